// Command animadump compiles an animation script and prints the
// resulting program. With -run it also evaluates the script over a
// timeline and prints the variable values at each step.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/lumenwm/anima"
	"github.com/lumenwm/anima/vm"
)

func main() {
	verbose := flag.Bool("v", false, "enable debug logging")
	run := flag.Float64("run", 0, "evaluate the script over this many seconds")
	fps := flag.Int("fps", 10, "steps per second for -run")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] script.yaml\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	if *verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	src, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	program, err := anima.Compile(src)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Print(program.Disassemble())
	fmt.Println("variables:")
	for _, name := range program.VariableNames() {
		slot, _ := program.SlotOf(name)
		fmt.Printf("    %s -> %d\n", name, slot)
	}
	fmt.Printf("slots: %d, stack size: %d, max duration: %gs\n",
		program.NSlots, program.StackSize, program.MaxDuration)

	if *run <= 0 {
		return
	}
	if err := evaluate(program, *run, *fps); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func evaluate(program *vm.Program, seconds float64, fps int) error {
	instance := vm.NewInstance(program)
	dt := 1 / float64(fps)
	names := program.VariableNames()
	for {
		if err := instance.Evaluate(nil); err != nil {
			return err
		}
		fmt.Printf("t=%-8.3f", instance.Elapsed())
		for _, name := range names {
			v, _ := instance.ValueOf(name)
			fmt.Printf(" %s=%-10.4f", name, v)
		}
		fmt.Println()
		if instance.Elapsed() >= seconds || instance.IsFinished() {
			return nil
		}
		instance.Step(dt)
	}
}

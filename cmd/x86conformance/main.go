/*
   x86conformance - a single-step JSON vector runner for emu/cpu.

   Not a debugger and not a host harness: it loads a file of Vector
   objects (see emu/cpu/conformance.go), runs each through exactly one
   instruction, and reports pass/fail. Built on gopkg.in/urfave/cli.v2,
   the same CLI library master-g-childhood's NES tooling uses.

   Copyright (c) 2026, the x86core contributors
*/
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/urfave/cli.v2"

	"github.com/go8086/x86core/emu/cpu"
)

func loadVectors(path string) ([]cpu.Vector, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("x86conformance: %w", err)
	}
	var vectors []cpu.Vector
	if err := json.Unmarshal(data, &vectors); err != nil {
		return nil, fmt.Errorf("x86conformance: parsing %s: %w", path, err)
	}
	return vectors, nil
}

func run(path string, verbose bool) (int, int, error) {
	vectors, err := loadVectors(path)
	if err != nil {
		return 0, 0, err
	}
	passed := 0
	for _, v := range vectors {
		outcome, err := cpu.RunVector(v)
		if err != nil {
			fmt.Printf("FAIL %s: %v\n", v.Name, err)
			continue
		}
		if outcome.Pass() {
			passed++
			if verbose {
				fmt.Printf("PASS %s (%d cycles)\n", outcome.Name, outcome.Cycles)
			}
			continue
		}
		fmt.Printf("FAIL %s\n", outcome.Name)
		for _, m := range outcome.Mismatches {
			fmt.Printf("  %s\n", m)
		}
	}
	return passed, len(vectors), nil
}

func main() {
	app := &cli.App{
		Name:  "x86conformance",
		Usage: "run JSON single-step vectors against emu/cpu",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "print every passing vector, not just failures",
			},
		},
		Action: func(c *cli.Context) error {
			if c.Args().Len() == 0 {
				return cli.Exit("usage: x86conformance [-v] <vectors.json>...", 1)
			}
			total, passedTotal := 0, 0
			for i := 0; i < c.Args().Len(); i++ {
				passed, n, err := run(c.Args().Get(i), c.Bool("verbose"))
				if err != nil {
					return err
				}
				passedTotal += passed
				total += n
			}
			fmt.Printf("%d/%d vectors passed\n", passedTotal, total)
			if passedTotal != total {
				return cli.Exit("", 1)
			}
			return nil
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

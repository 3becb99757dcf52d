// Command rv64emu boots a kernel image on an emulated RV64 hart: it
// wires DRAM, CLINT, PLIC, UART, and a VirtIO block device onto one
// system bus, loads the kernel at DRAM base and (optionally) a disk
// image into the VirtIO backing store, and runs until the guest halts,
// a fatal trap aborts the run, or the operator hits Ctrl-C.
//
// Flag handling and the log.Fatal-on-setup-error idiom follow
// cmd/vm/main.go; the SIGINT-dumps-registers-then-exits behavior is
// this program's own (spec.md §6).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"rv64emu/internal/config"
	"rv64emu/pkg/bus"
	"rv64emu/pkg/cpu"
	"rv64emu/pkg/device/uart"
	"rv64emu/pkg/device/virtio"
)

func main() {
	log.SetFlags(0)
	kernelPath := flag.String("kernel", "", "kernel image to load at DRAM base")
	diskPath := flag.String("disk", "", "disk image for the VirtIO block device")
	configPath := flag.String("config", "", "optional TOML configuration file")
	verbose := flag.Bool("v", false, "also print the halt error when a fatal trap ends the run")
	flag.Parse()

	if *kernelPath == "" {
		log.Fatal("usage: rv64emu -kernel <image> [-disk <image>] [-config <file.toml>]")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	kernel, err := os.ReadFile(*kernelPath)
	if err != nil {
		log.Fatal(err)
	}

	var disk []byte
	if *diskPath != "" {
		disk, err = os.ReadFile(*diskPath)
		if err != nil {
			log.Fatal(err)
		}
	}

	dramSize := cfg.DRAMSizeBytes
	if dramSize == 0 {
		dramSize = bus.DefaultDRAMSize
	}

	u := uart.New(os.Stdin, os.Stdout)
	v := virtio.New(disk)
	b := bus.New(dramSize, u, v)
	b.DRAM.LoadImage(kernel)

	hart := cpu.New(b)
	hart.AbortOnFatalTrap = cfg.AbortOnFatal()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	done := make(chan error, 1)
	go func() { done <- hart.Run() }()

	select {
	case <-sigc:
		hart.DumpRegs()
		os.Exit(0)
	case err := <-done:
		if *verbose || err != cpu.ErrHalted {
			fmt.Fprintln(os.Stderr, err)
		}
		hart.DumpRegs()
		if err != cpu.ErrHalted {
			os.Exit(1)
		}
	}
}

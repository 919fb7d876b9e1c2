package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "list":
		listPorts()
	case "detect":
		detectGuitar()
	case "monitor":
		monitorInput()
	case "poll":
		pollDevices()
	default:
		usage()
	}
}

func usage() {
	fmt.Println("MIDI Test Scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list     - List all MIDI ports")
	fmt.Println("  detect   - Find guitar controllers")
	fmt.Println("  monitor  - Print incoming messages from a guitar")
	fmt.Println("  poll     - Poll for device changes")
}

func isGuitar(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "guitar") || strings.Contains(lower, "midi pro")
}

func listPorts() {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	type result struct {
		ins  []drivers.In
		outs []drivers.Out
	}
	ch := make(chan result, 1)
	go func() {
		ins := midi.GetInPorts()
		outs := midi.GetOutPorts()
		ch <- result{ins: ins, outs: outs}
	}()

	select {
	case r := <-ch:
		for i, p := range r.ins {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
		fmt.Println("\n=== MIDI Output Ports ===")
		for i, p := range r.outs {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
	case <-time.After(3 * time.Second):
		fmt.Println("\nTIMEOUT! CoreMIDI is hung.")
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
	}
}

func detectGuitar() {
	fmt.Println("Looking for guitar controllers...")

	ins := midi.GetInPorts()
	found := false
	for i, p := range ins {
		if isGuitar(p.String()) {
			fmt.Printf("Found input: %d: %s\n", i, p.String())
			found = true
		}
	}

	if found {
		fmt.Println("\nGuitar controller detected!")
	} else {
		fmt.Println("\nNo guitar controller found")
		fmt.Println("If yours reports an unusual port name, add it to portHints in config.json")
	}
}

func monitorInput() {
	ins := midi.GetInPorts()
	var inPort drivers.In
	for _, p := range ins {
		if isGuitar(p.String()) {
			inPort = p
			break
		}
	}
	if inPort == nil && len(ins) > 0 {
		fmt.Println("No guitar port found, monitoring first input instead")
		inPort = ins[0]
	}
	if inPort == nil {
		fmt.Println("No MIDI inputs available")
		return
	}

	fmt.Printf("Monitoring %s (Ctrl+C to exit)...\n", inPort.String())

	stop, err := midi.ListenTo(inPort, func(msg midi.Message, timestampms int32) {
		var channel, note, velocity uint8
		var cc, value uint8

		switch {
		case msg.GetNoteOn(&channel, &note, &velocity):
			fmt.Printf("[%6dms] NoteOn  ch=%d note=%3d vel=%3d\n", timestampms, channel, note, velocity)
		case msg.GetNoteOff(&channel, &note, &velocity):
			fmt.Printf("[%6dms] NoteOff ch=%d note=%3d\n", timestampms, channel, note)
		case msg.GetControlChange(&channel, &cc, &value):
			fmt.Printf("[%6dms] CC      ch=%d cc=%3d val=%3d\n", timestampms, channel, cc, value)
		}
	})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer stop()

	select {}
}

func pollDevices() {
	fmt.Println("Polling for device changes every 2 seconds...")
	fmt.Println("Connect/disconnect the guitar to test. Ctrl+C to exit.")

	lastIn := ""

	for {
		ins := midi.GetInPorts()

		var inNames []string
		for _, p := range ins {
			inNames = append(inNames, p.String())
		}

		currentIn := strings.Join(inNames, ",")
		if currentIn != lastIn {
			fmt.Printf("\n[%s] Device change detected!\n", time.Now().Format("15:04:05"))
			fmt.Printf("  Inputs: %v\n", inNames)

			for _, name := range inNames {
				if isGuitar(name) {
					fmt.Println("  -> Guitar controller detected!")
				}
			}

			lastIn = currentIn
		}

		time.Sleep(2 * time.Second)
	}
}

package controller

import (
	"context"
	"strings"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"mityguitar/debug"
)

// DeviceEvent is emitted when guitars connect/disconnect
type DeviceEvent struct {
	Type   DeviceEventType
	Guitar *Guitar
	ID     string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

// DeviceManager handles hot-plug detection of guitar controllers
type DeviceManager struct {
	guitars  map[string]*Guitar
	mu       sync.RWMutex
	events   chan DeviceEvent
	pollRate time.Duration

	// Extra port-name substrings to accept, from config.
	portHints []string
}

// NewDeviceManager creates a manager that also accepts ports whose
// names contain any of the given hints.
func NewDeviceManager(portHints ...string) *DeviceManager {
	return &DeviceManager{
		guitars:   make(map[string]*Guitar),
		events:    make(chan DeviceEvent, 16),
		pollRate:  time.Second,
		portHints: portHints,
	}
}

// Events returns a channel of device connect/disconnect events
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Guitars returns a snapshot of connected controllers
func (dm *DeviceManager) Guitars() map[string]*Guitar {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	out := make(map[string]*Guitar, len(dm.guitars))
	for k, v := range dm.guitars {
		out[k] = v
	}
	return out
}

// First returns any connected guitar (or nil).
func (dm *DeviceManager) First() *Guitar {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	for _, g := range dm.guitars {
		return g
	}
	return nil
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	// Initial scan
	dm.scan()

	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan()
		}
	}
}

func (dm *DeviceManager) scan() {
	// Get current MIDI ports with timeout (CoreMIDI can hang)
	ch := make(chan []drivers.In, 1)
	go func() {
		ch <- gomidi.GetInPorts()
	}()

	var inPorts []drivers.In
	select {
	case inPorts = <-ch:
	case <-time.After(3 * time.Second):
		// MIDI backend is hung - skip this scan
		return
	}

	seenIDs := make(map[string]bool)

	for i, inPort := range inPorts {
		if !dm.isGuitarPort(inPort.String()) {
			continue
		}
		id := inPort.String()
		seenIDs[id] = true

		dm.mu.RLock()
		_, exists := dm.guitars[id]
		dm.mu.RUnlock()

		if !exists {
			g, err := NewGuitar(id, inPorts[i])
			if err != nil {
				debug.Log(debug.Controller, "open %s: %v", id, err)
				continue
			}

			dm.mu.Lock()
			dm.guitars[id] = g
			dm.mu.Unlock()

			dm.events <- DeviceEvent{
				Type:   DeviceConnected,
				Guitar: g,
				ID:     id,
			}
		}
	}

	// Check for disconnects
	dm.mu.Lock()
	var toRemove []string
	for id := range dm.guitars {
		if !seenIDs[id] {
			toRemove = append(toRemove, id)
		}
	}
	for _, id := range toRemove {
		g := dm.guitars[id]
		g.Close()
		delete(dm.guitars, id)
		dm.events <- DeviceEvent{
			Type: DeviceDisconnected,
			ID:   id,
		}
	}
	dm.mu.Unlock()
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, g := range dm.guitars {
		g.Close()
	}
	dm.guitars = make(map[string]*Guitar)
}

func (dm *DeviceManager) isGuitarPort(name string) bool {
	lower := strings.ToLower(name)
	if strings.Contains(lower, "guitar") || strings.Contains(lower, "midi pro") {
		return true
	}
	for _, hint := range dm.portHints {
		if hint != "" && strings.Contains(lower, strings.ToLower(hint)) {
			return true
		}
	}
	return false
}

package main

import (
	"github.com/sirupsen/logrus"

	"github.com/aberro/barocpu/internal/cpu"
)

// consoleObserver narrates processor side effects through the shared
// logger. Writes to the debug magic address are displayed but never
// forwarded anywhere persistent.
type consoleObserver struct {
	log *logrus.Logger
}

func (o consoleObserver) MemoryRead(address uint32) {
	o.log.WithField("address", address).Debug("memory read requested")
}

func (o consoleObserver) MemoryWrite(address uint32, value string) {
	if address == 0xFFFFFFFF {
		o.log.Infof("debug: %s", value)
		return
	}
	o.log.WithFields(logrus.Fields{"address": address, "value": value}).Debug("memory write")
}

func (o consoleObserver) ChannelWrite(index uint32, value string) {
	o.log.WithFields(logrus.Fields{"channel": index, "value": value}).Info("channel write")
}

// loadProcessor compiles path and wires a fresh Processor with the given
// multiplier and debug mode, narrated through the shared logger.
func loadProcessor(path string, multiplier int, mode cpu.DebugMode) (*cpu.Processor, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	prog, err := cpu.Compile(lines)
	if err != nil {
		return nil, err
	}
	p := cpu.NewProcessor(consoleObserver{log: log}, log)
	p.SetMultiplier(multiplier)
	p.DebugMode = mode
	p.Load(prog)
	p.Start()
	return p, nil
}

/*
NAME
  acoustilink - sends and receives short messages over an acoustic FSK link.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package acoustilink is a command-line tool for sending and receiving
// short byte payloads over a speaker/microphone acoustic FSK link.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ausocean/utils/logging"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"github.com/mistband/acoustilink/audio"
	"github.com/mistband/acoustilink/codec/wav"
	"github.com/mistband/acoustilink/config"
	"github.com/mistband/acoustilink/modem"
	"github.com/mistband/acoustilink/packet"
)

// Logging configuration.
const (
	logPath      = "/var/log/acoustilink/acoustilink.log"
	logMaxSize   = 10 // MB
	logMaxBackup = 5
	logMaxAge    = 28 // days
)

func main() {
	data := flag.String("data", "", "Payload text to send, as a DATA or ENCRYPTED packet.")
	secret := flag.String("secret", "", "Shared secret to prove (sending) or check (receiving) in AUTH mode.")
	authMode := flag.Bool("auth-mode", false, "Send or receive an AUTH packet instead of DATA.")
	key := flag.String("key", "", "Password to encrypt (sending) or decrypt (receiving) with.")
	encrypt := flag.Bool("encrypt", false, "Send an ENCRYPTED packet instead of DATA.")
	unitID := flag.Uint("unit-id", 0, "Unit ID, 0-15, carried on the wire.")
	output := flag.String("output", "", "Write synthesized audio to this WAV file.")
	input := flag.String("input", "", "Read a WAV file and decode any packets found in it.")
	record := flag.Float64("record", 0, "Capture this many seconds of live audio and decode it, instead of --input.")
	play := flag.Bool("play", false, "Play synthesized audio through the default output device.")
	logLevel := flag.Int("log-level", int(logging.Info), "Log level, 0 (Debug) to 4 (Fatal).")
	flag.Parse()

	fileLog := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	log := logging.New(int8(*logLevel), io.MultiWriter(fileLog, os.Stderr), true)

	c := config.Config{UnitID: uint8(*unitID), Secret: *secret, Password: *key, Logger: log}
	if err := c.Validate(); err != nil {
		log.Warning("configuration defaulted", "error", err)
	}

	switch {
	case *input != "" || *record > 0:
		os.Exit(receive(c, log, *input, *record, *authMode))
	default:
		os.Exit(send(c, log, *data, *authMode, *encrypt, *output, *play))
	}
}

// send builds the requested packet variant and writes/plays it.
func send(c config.Config, log logging.Logger, text string, authMode, encrypt bool, output string, play bool) int {
	var samples []int16
	var err error

	switch {
	case authMode:
		log.Info("building AUTH packet", "unitID", c.UnitID)
		samples, err = packet.BuildAuth(c.Secret, c.UnitID)
	case encrypt:
		log.Info("building ENCRYPTED packet", "unitID", c.UnitID, "bytes", len(text))
		samples, err = packet.BuildEncrypted([]byte(text), c.Password, c.UnitID)
	default:
		log.Info("building DATA packet", "unitID", c.UnitID, "bytes", len(text))
		samples, err = packet.BuildData([]byte(text), c.UnitID)
	}
	if err != nil {
		log.Error("could not build packet", "error", err)
		return 1
	}

	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			log.Error("could not create output file", "error", err)
			return 1
		}
		defer f.Close()
		if err := wav.Write(f, samples, c.SampleRate); err != nil {
			log.Error("could not write WAV file", "error", err)
			return 1
		}
		log.Info("wrote output file", "path", output)
	}

	if play {
		if err := audio.New(log, c.DeviceTitle).Play(samples, c.SampleRate); err != nil {
			log.Error("could not play audio", "error", err)
			return 1
		}
	}
	return 0
}

// receive obtains samples from a WAV file or live capture, decodes them, and
// reports every packet found. It exits non-zero if nothing decoded, or if an
// AUTH/ENCRYPTED packet was found but denied/failed.
func receive(c config.Config, log logging.Logger, input string, recordSeconds float64, authMode bool) int {
	var samples []int16
	var err error

	switch {
	case input != "":
		f, ferr := os.Open(input)
		if ferr != nil {
			log.Error("could not open input file", "error", ferr)
			return 1
		}
		defer f.Close()
		samples, err = wav.Read(f, c.SampleRate)
	default:
		samples, _, err = audio.New(log, c.DeviceTitle).Record(c.SampleRate, time.Duration(recordSeconds*float64(time.Second)))
	}
	if err != nil {
		log.Error("could not obtain audio", "error", err)
		return 1
	}

	filtered, err := modem.FilterBand(samples, c.SampleRate)
	if err != nil {
		log.Warning("bandpass filter failed, decoding raw samples", "error", err)
		filtered = samples
	}

	mode := packet.ModeData
	if authMode {
		mode = packet.ModeAuth
	}
	results := packet.DecodeWithLogger(filtered, packet.DecodeOptions{
		ExpectedMode:   mode,
		Password:       c.Password,
		ExpectedSecret: c.Secret,
	}, log)

	if len(results) == 0 {
		log.Warning("no packets decoded")
		return 1
	}

	status := 0
	for _, r := range results {
		switch r.Kind {
		case packet.DataOk:
			fmt.Printf("DATA unit=%d payload=%q\n", r.UnitID, r.Payload)
		case packet.AuthOk:
			fmt.Printf("AUTH unit=%d granted=%v\n", r.UnitID, r.Granted)
			if !r.Granted {
				status = 1
			}
		case packet.EncryptedOk:
			fmt.Printf("ENCRYPTED unit=%d payload=%q\n", r.UnitID, r.Payload)
		case packet.EncryptedLocked:
			fmt.Printf("ENCRYPTED unit=%d locked (no --key given)\n", r.UnitID)
			status = 1
		case packet.EncryptedFailed:
			fmt.Printf("ENCRYPTED unit=%d failed to decrypt\n", r.UnitID)
			status = 1
		}
	}
	return status
}

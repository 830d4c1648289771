package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jwebster45206/campus-quest/pkg/campus"
)

type commandKind string

const (
	cmdGo      commandKind = "go"
	cmdFloor   commandKind = "floor"
	cmdCode    commandKind = "code"
	cmdHint    commandKind = "hint"
	cmdRoll    commandKind = "roll"
	cmdEscort  commandKind = "escort"
	cmdDecrypt commandKind = "decrypt"
	cmdBell    commandKind = "bell"
	cmdSummon  commandKind = "summon"
	cmdInv     commandKind = "inv"
	cmdCopy    commandKind = "copy"
	cmdHelp    commandKind = "help"
	cmdQuit    commandKind = "quit"
)

type command struct {
	kind   commandKind
	arg    string
	floor  int
	accept bool
}

const helpText = `Commands:
• go <location>     Walk to a location (unique prefixes work)
• floor <1-4>       Take the library elevator (4 is the basement)
• code <digits>     Enter the Der-Tian Hall gate code
• hint              Show the gate hint
• roll              Play a squash rally
• escort yes|no     Answer the professor
• decrypt <word>    Answer the cipher
• bell a|b|c        Answer the Fu Bell quiz
• summon            Activate the magic circle
• inv               Show your inventory
• copy              Copy the game id to the clipboard
• quit              Leave the game`

var errEmptyCommand = errors.New("empty command")

func parseCommand(input string) (command, error) {
	fields := strings.Fields(strings.TrimSpace(input))
	if len(fields) == 0 {
		return command{}, errEmptyCommand
	}
	verb := strings.ToLower(strings.TrimPrefix(fields[0], "/"))
	args := fields[1:]
	rest := strings.Join(args, " ")

	needArg := func(kind commandKind, usage string) (command, error) {
		if rest == "" {
			return command{}, fmt.Errorf("usage: %s", usage)
		}
		return command{kind: kind, arg: rest}, nil
	}

	switch commandKind(verb) {
	case cmdGo:
		if rest == "" {
			return command{}, fmt.Errorf("usage: go <location> (%s)", strings.Join(campus.LocationKeys, ", "))
		}
		key, err := matchLocation(rest)
		if err != nil {
			return command{}, err
		}
		return command{kind: cmdGo, arg: key}, nil

	case cmdFloor:
		if len(args) != 1 {
			return command{}, errors.New("usage: floor <1-4>")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return command{}, fmt.Errorf("not a floor number: %q", args[0])
		}
		return command{kind: cmdFloor, floor: n}, nil

	case cmdCode:
		return needArg(cmdCode, "code <digits>")

	case cmdDecrypt:
		return needArg(cmdDecrypt, "decrypt <word>")

	case cmdBell:
		return needArg(cmdBell, "bell a|b|c")

	case cmdEscort:
		switch strings.ToLower(rest) {
		case "yes", "y", "accept":
			return command{kind: cmdEscort, accept: true}, nil
		case "no", "n", "decline":
			return command{kind: cmdEscort, accept: false}, nil
		default:
			return command{}, errors.New("usage: escort yes|no")
		}

	case cmdHint, cmdRoll, cmdSummon, cmdInv, cmdCopy, cmdHelp, cmdQuit:
		return command{kind: commandKind(verb)}, nil

	case "exit":
		return command{kind: cmdQuit}, nil
	}
	return command{}, fmt.Errorf("unknown command %q, type help for a list", verb)
}

// matchLocation resolves a location key or a unique prefix of one.
func matchLocation(s string) (string, error) {
	s = strings.ReplaceAll(strings.ToLower(s), " ", "_")
	var matches []string
	for _, key := range campus.LocationKeys {
		if key == s {
			return key, nil
		}
		if strings.HasPrefix(key, s) {
			matches = append(matches, key)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("unknown location %q", s)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%q is ambiguous: %s", s, strings.Join(matches, ", "))
	}
}

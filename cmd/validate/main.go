package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jwebster45206/campus-quest/pkg/campus"
)

func main() {
	validator := &CampusValidator{}

	var err error
	if len(os.Args) < 2 {
		fmt.Println("Validating embedded campus data...")
		err = validator.validate(campus.Default())
	} else {
		err = validator.validateFile(os.Args[1])
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Campus data is valid!")
}

type CampusValidator struct {
	errors []string
}

func (v *CampusValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	if !strings.HasSuffix(filepath.Base(filename), ".json") {
		return fmt.Errorf("campus file must have .json extension: %s", filepath.Base(filename))
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	if !json.Valid(data) {
		return fmt.Errorf("file %s contains invalid JSON", filename)
	}

	c, err := campus.Load(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("file %s failed strict JSON unmarshaling: %w", filename, err)
	}
	return v.validate(c)
}

func (v *CampusValidator) validate(c *campus.Campus) error {
	v.errors = nil

	if err := c.Validate(); err != nil {
		for _, line := range strings.Split(err.Error(), "\n") {
			v.addError(line)
		}
	}

	for _, loc := range c.Locations {
		v.validateIDFormat("location key", loc.Key)
		for floor := range loc.Floors {
			if loc.Key != campus.Library {
				v.addError(fmt.Sprintf("location '%s' has floor '%s' but only the library has floors", loc.Key, floor))
			}
		}
	}

	known := make(map[string]bool, len(c.Locations))
	for _, loc := range c.Locations {
		known[loc.Key] = true
	}
	for _, rule := range campus.Rules() {
		if rule.When.Location != "" && !known[rule.When.Location] {
			v.addError(fmt.Sprintf("rule '%s' watches unknown location '%s'", rule.ID, rule.When.Location))
		}
		for _, key := range rule.Then.Unlock {
			if !known[key] {
				v.addError(fmt.Sprintf("rule '%s' unlocks unknown location '%s'", rule.ID, key))
			}
		}
	}

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors:\n%s", strings.Join(v.errors, "\n"))
	}
	return nil
}

func (v *CampusValidator) validateIDFormat(fieldName, id string) {
	if id == "" {
		return
	}
	if !validIDRegex.MatchString(id) {
		v.addError(fmt.Sprintf("%s '%s' should be lowercase snake_case", fieldName, id))
	}
}

func (v *CampusValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

var validIDRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)

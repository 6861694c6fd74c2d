package transform

import (
	"errors"
	"fmt"
	"strings"
)

// ErrContract marks a transformer registered with an invalid parameter declaration
var ErrContract = errors.New("transformer contract violation")

// ContractError names the slot and the offending parameter
type ContractError struct {
	Slot  string
	Param string
}

func (e *ContractError) Error() string {
	if e.Slot == "" {
		return fmt.Sprintf("%v: unknown parameter %q", ErrContract, e.Param)
	}
	return fmt.Sprintf("%v: slot %s declares unknown parameter %q", ErrContract, e.Slot, e.Param)
}

func (e *ContractError) Is(target error) bool {
	return target == ErrContract
}

// Params is the set of inputs a slot declares, resolved once at registration
type Params uint8

const (
	ParamSelf Params = 1 << iota
	ParamValue
	ParamPos
	ParamPixel
	ParamSource
	ParamTick
	ParamContext
)

var paramNames = []struct {
	name  string
	param Params
}{
	{"self", ParamSelf},
	{"value", ParamValue},
	{"pos", ParamPos},
	{"pixel", ParamPixel},
	{"source", ParamSource},
	{"tick", ParamTick},
	{"context", ParamContext},
}

// ParseParams resolves parameter names into a set. Any name outside
// self, value, pos, pixel, source, tick, context is a ContractError
func ParseParams(names ...string) (Params, error) {
	var p Params
	for _, n := range names {
		found := false
		for _, pn := range paramNames {
			if pn.name == n {
				p |= pn.param
				found = true
				break
			}
		}
		if !found {
			return 0, &ContractError{Param: n}
		}
	}
	return p, nil
}

// Has reports whether every parameter of f is declared
func (p Params) Has(f Params) bool {
	return p&f == f
}

func (p Params) String() string {
	var names []string
	for _, pn := range paramNames {
		if p&pn.param != 0 {
			names = append(names, pn.name)
		}
	}
	return strings.Join(names, ",")
}

// Copyright (c) 2026 pxng0lin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package ir defines the accessor contract the detection engine uses to
// query an analysis backend. The engine never parses contract source;
// it consumes Function/Instruction/Modifier/Callee views produced
// elsewhere and treats them as an immutable snapshot for the duration
// of a rule run.
package ir

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Global identifies a chain-level global an instruction touches.
type Global string

const (
	GlobalBlockTimestamp Global = "block.timestamp"
	GlobalBlockNumber    Global = "block.number"
	GlobalMsgSender      Global = "msg.sender"
	GlobalMsgValue       Global = "msg.value"
)

// Property is a visibility/mutability flag on a function.
type Property uint16

const (
	PropPublic Property = 1 << iota
	PropExternal
	PropInternal
	PropPrivate
	PropView
	PropPure
	PropPayable
	PropConstructor
)

// PropertySet is a bit set of Property flags.
type PropertySet uint16

func (s PropertySet) Has(p Property) bool { return uint16(s)&uint16(p) != 0 }

// AnyOf reports whether at least one flag in mask is set.
func (s PropertySet) AnyOf(mask PropertySet) bool { return uint16(s)&uint16(mask) != 0 }

// NoneOf reports whether no flag in mask is set.
func (s PropertySet) NoneOf(mask PropertySet) bool { return uint16(s)&uint16(mask) == 0 }

func (s PropertySet) With(p Property) PropertySet { return PropertySet(uint16(s) | uint16(p)) }

// ParseProperty maps a textual flag from a snapshot export to its bit.
// Unknown flags are ignored (zero value), not an error.
func ParseProperty(name string) Property {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "public":
		return PropPublic
	case "external":
		return PropExternal
	case "internal":
		return PropInternal
	case "private":
		return PropPrivate
	case "view":
		return PropView
	case "pure":
		return PropPure
	case "payable":
		return PropPayable
	case "constructor":
		return PropConstructor
	default:
		return 0
	}
}

// FunctionID identifies a function across the whole snapshot. Two
// functions are the same iff their owning contract address and
// signature text both match.
type FunctionID struct {
	Contract  common.Address `json:"contract"`
	Signature string         `json:"signature"`
}

func (id FunctionID) String() string {
	return fmt.Sprintf("%s:%s", id.Contract.Hex(), id.Signature)
}

// Component is a structural sub-part of an instruction, e.g. an emitted
// event reference or a resolved call target.
type Component struct {
	Name string `json:"name"`
	Kind string `json:"kind,omitempty"`
}

// Instruction is one statement-level rendering of a function or
// modifier body. All accessors are cheap and never fail; missing
// optional data comes back empty.
type Instruction interface {
	Text() string
	GlobalRefs() []Global
	Components() []Component
}

// Modifier is a named modifier attached to a function, with its own
// instruction body.
type Modifier interface {
	Name() string
	Instructions(limit int) ([]Instruction, error)
}

// Callee is a call target reached from a function body. Owner is nil
// when cross-contract resolution failed; the backend never fabricates
// an owning contract.
type Callee interface {
	Name() string
	Owner() *common.Address
}

// Function is the unit of analysis. Enumeration methods take a limit:
// zero or negative means unbounded, a positive limit caps how many
// items the backend will yield.
type Function interface {
	ID() FunctionID
	Signature() string
	Properties() PropertySet
	Contract() common.Address
	Instructions(limit int) ([]Instruction, error)
	Modifiers() ([]Modifier, error)
	Callees(limit int) ([]Callee, error)
	// ContractFunctions enumerates sibling functions of the owning
	// contract, used for interface-name heuristics.
	ContractFunctions(limit int) ([]Function, error)
}

// Filter selects candidate functions by property flags.
type Filter struct {
	// AnyOf: at least one of these flags must be set (ignored if zero).
	AnyOf PropertySet
	// NoneOf: none of these flags may be set.
	NoneOf PropertySet
}

// Match applies the filter to a property set.
func (f Filter) Match(props PropertySet) bool {
	if f.AnyOf != 0 && !props.AnyOf(f.AnyOf) {
		return false
	}
	return props.NoneOf(f.NoneOf)
}

// Backend is the narrow contract the engine consumes. Functions
// returns candidates in a stable order; on failure it may return the
// functions enumerated so far together with the error.
type Backend interface {
	Functions(filter Filter, limit int) ([]Function, error)
}

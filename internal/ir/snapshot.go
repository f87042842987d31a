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

package ir

import (
	"encoding/json"
	"os"

	"github.com/ethereum/go-ethereum/common"

	"github.com/pxng0lin/caged/internal/errors"
)

// Snapshot is a point-in-time IR export loaded from disk. It is the
// concrete Backend used by the CLI; tests build it in memory.
type Snapshot struct {
	Source    string         `json:"source,omitempty"`
	Contracts []ContractData `json:"contracts"`
}

// ContractData is one contract in a snapshot.
type ContractData struct {
	Address   common.Address `json:"address"`
	Name      string         `json:"name,omitempty"`
	Functions []FunctionData `json:"functions"`
}

// FunctionData is the serialized form of a function.
type FunctionData struct {
	Signature    string            `json:"signature"`
	Properties   []string          `json:"properties,omitempty"`
	Instructions []InstructionData `json:"instructions,omitempty"`
	Modifiers    []ModifierData    `json:"modifiers,omitempty"`
	Callees      []CalleeData      `json:"callees,omitempty"`
}

type InstructionData struct {
	Text       string      `json:"text"`
	Globals    []Global    `json:"globals,omitempty"`
	Components []Component `json:"components,omitempty"`
}

type ModifierData struct {
	Name         string            `json:"name"`
	Instructions []InstructionData `json:"instructions,omitempty"`
}

type CalleeData struct {
	Name     string          `json:"name"`
	Contract *common.Address `json:"contract,omitempty"`
}

// LoadSnapshot reads a JSON IR export from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapSnapshotNotFound(path, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.WrapBackendError(err)
	}
	return &snap, nil
}

// Functions implements Backend over the in-memory snapshot.
func (s *Snapshot) Functions(filter Filter, limit int) ([]Function, error) {
	var out []Function
	for ci := range s.Contracts {
		c := &s.Contracts[ci]
		for fi := range c.Functions {
			fn := &snapshotFunc{contract: c, data: &c.Functions[fi]}
			if !filter.Match(fn.Properties()) {
				continue
			}
			out = append(out, fn)
			if limit > 0 && len(out) >= limit {
				return out, nil
			}
		}
	}
	return out, nil
}

// snapshotFunc adapts FunctionData to the Function interface.
type snapshotFunc struct {
	contract *ContractData
	data     *FunctionData
}

func (f *snapshotFunc) ID() FunctionID {
	return FunctionID{Contract: f.contract.Address, Signature: f.data.Signature}
}

func (f *snapshotFunc) Signature() string { return f.data.Signature }

func (f *snapshotFunc) Contract() common.Address { return f.contract.Address }

func (f *snapshotFunc) Properties() PropertySet {
	var set PropertySet
	for _, p := range f.data.Properties {
		set = set.With(ParseProperty(p))
	}
	return set
}

func (f *snapshotFunc) Instructions(limit int) ([]Instruction, error) {
	return instructionSlice(f.data.Instructions, limit), nil
}

func (f *snapshotFunc) Modifiers() ([]Modifier, error) {
	out := make([]Modifier, 0, len(f.data.Modifiers))
	for i := range f.data.Modifiers {
		out = append(out, &snapshotModifier{data: &f.data.Modifiers[i]})
	}
	return out, nil
}

func (f *snapshotFunc) Callees(limit int) ([]Callee, error) {
	out := make([]Callee, 0, len(f.data.Callees))
	for i := range f.data.Callees {
		out = append(out, &snapshotCallee{data: &f.data.Callees[i]})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (f *snapshotFunc) ContractFunctions(limit int) ([]Function, error) {
	out := make([]Function, 0, len(f.contract.Functions))
	for i := range f.contract.Functions {
		out = append(out, &snapshotFunc{contract: f.contract, data: &f.contract.Functions[i]})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

type snapshotInstruction struct {
	data *InstructionData
}

func (i *snapshotInstruction) Text() string { return i.data.Text }

func (i *snapshotInstruction) GlobalRefs() []Global { return i.data.Globals }

func (i *snapshotInstruction) Components() []Component { return i.data.Components }

type snapshotModifier struct {
	data *ModifierData
}

func (m *snapshotModifier) Name() string { return m.data.Name }

func (m *snapshotModifier) Instructions(limit int) ([]Instruction, error) {
	return instructionSlice(m.data.Instructions, limit), nil
}

type snapshotCallee struct {
	data *CalleeData
}

func (c *snapshotCallee) Name() string { return c.data.Name }

func (c *snapshotCallee) Owner() *common.Address { return c.data.Contract }

func instructionSlice(data []InstructionData, limit int) []Instruction {
	out := make([]Instruction, 0, len(data))
	for i := range data {
		out = append(out, &snapshotInstruction{data: &data[i]})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

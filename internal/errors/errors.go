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

package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for comparison with errors.Is
var (
	ErrConfig           = errors.New("rule configuration invalid")
	ErrBackend          = errors.New("IR backend enumeration failed")
	ErrUnknownRule      = errors.New("unknown rule")
	ErrSnapshotNotFound = errors.New("snapshot not found")
	ErrStore            = errors.New("history store failure")
	ErrValidation       = errors.New("validation failed")
)

// Wrap functions for consistent error wrapping
func WrapConfigError(ruleID, detail string) error {
	return fmt.Errorf("%w: rule %s: %s", ErrConfig, ruleID, detail)
}

func WrapBackendError(err error) error {
	return fmt.Errorf("%w: %w", ErrBackend, err)
}

func WrapUnknownRule(ruleID string) error {
	return fmt.Errorf("%w: %s", ErrUnknownRule, ruleID)
}

func WrapSnapshotNotFound(path string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrSnapshotNotFound, path, err)
}

func WrapStoreError(err error) error {
	return fmt.Errorf("%w: %w", ErrStore, err)
}

func WrapValidationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

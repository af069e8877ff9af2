// Copyright (c) 2026, Aepok Corporation.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package validator

import (
	"fmt"
	"strings"

	"github.com/aepokcorporation/gpu-setup-tool/pkg/errors"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/version"
)

// Operator represents a comparison operator in constraint expressions.
type Operator string

const (
	OperatorGTE Operator = ">="
	OperatorLTE Operator = "<="
	OperatorGT  Operator = ">"
	OperatorLT  Operator = "<"
	OperatorEQ  Operator = "=="
)

// ParsedConstraint is a parsed version constraint.
type ParsedConstraint struct {
	Operator Operator
	Value    version.Version
}

// ParseConstraintExpression parses ">= 535", "== 11.8", or a bare "11.8".
func ParseConstraintExpression(expr string) (*ParsedConstraint, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "constraint expression cannot be empty")
	}

	op := OperatorEQ
	// Longest operators first so ">" does not shadow ">=".
	for _, candidate := range []Operator{OperatorGTE, OperatorLTE, OperatorEQ, OperatorGT, OperatorLT} {
		if strings.HasPrefix(expr, string(candidate)) {
			op = candidate
			expr = strings.TrimSpace(strings.TrimPrefix(expr, string(candidate)))
			break
		}
	}

	v, err := version.ParseVersion(expr)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeInvalidRequest,
			"cannot parse constraint version", err, map[string]any{"version": expr})
	}
	return &ParsedConstraint{Operator: op, Value: v}, nil
}

// Evaluate reports whether actual satisfies the constraint.
func (pc *ParsedConstraint) Evaluate(actual string) (bool, error) {
	actualVer, err := version.ParseVersion(actual)
	if err != nil {
		return false, errors.WrapWithContext(errors.ErrCodeInvalidRequest,
			"cannot parse actual version", err, map[string]any{"version": actual})
	}

	cmp := actualVer.Compare(pc.Value)
	switch pc.Operator {
	case OperatorGTE:
		return cmp >= 0, nil
	case OperatorGT:
		return cmp > 0, nil
	case OperatorLTE:
		return cmp <= 0, nil
	case OperatorLT:
		return cmp < 0, nil
	case OperatorEQ:
		return cmp == 0, nil
	default:
		return false, errors.NewWithContext(errors.ErrCodeInvalidRequest,
			"unknown operator", map[string]any{"operator": pc.Operator})
	}
}

// String returns a string representation of the parsed constraint.
func (pc *ParsedConstraint) String() string {
	return fmt.Sprintf("%s %s", pc.Operator, pc.Value)
}

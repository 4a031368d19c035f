// Copyright 2025 Poiesic Systems
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


package core

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const maxNameLength = 256

var notBlank = validation.By(func(value interface{}) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return errors.New("must not be blank")
	}
	return nil
})

// ValidateCompany validates a Company before it enters the pipeline.
//
// Validation rules:
//   - Name must not be blank and at most 256 characters
//   - every tag must be non-blank
//
// Tags may be empty.
func ValidateCompany(company *Company) error {
	if company == nil {
		return fmt.Errorf("%w: company is nil", ErrInvalidCompany)
	}
	err := validation.ValidateStruct(company,
		validation.Field(&company.Name, validation.Required, notBlank, validation.RuneLength(1, maxNameLength)),
		validation.Field(&company.Tags, validation.Each(notBlank)),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCompany, err)
	}
	return nil
}

// ValidateConcept validates a Concept. Every target industry must be
// non-blank; the list itself may be empty.
func ValidateConcept(concept *Concept) error {
	if concept == nil {
		return fmt.Errorf("%w: concept is nil", ErrInvalidConcept)
	}
	err := validation.ValidateStruct(concept,
		validation.Field(&concept.TargetIndustries, validation.Each(notBlank)),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConcept, err)
	}
	return nil
}

// ValidateCandidateCompany checks the one hard requirement on extracted
// companies: a non-blank name.
func ValidateCandidateCompany(candidate *CandidateCompany) error {
	if candidate == nil {
		return fmt.Errorf("%w: candidate is nil", ErrInvalidCandidate)
	}
	err := validation.ValidateStruct(candidate,
		validation.Field(&candidate.Name, validation.Required, notBlank),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCandidate, err)
	}
	return nil
}

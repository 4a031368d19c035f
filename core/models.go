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
	"strings"
	"time"
)

// Company is the caller's own company record. Only Name, PersonalNote and
// Tags participate in query construction; the remaining fields are carried
// through untouched.
type Company struct {
	ID              string          `json:"id"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
	Name            string          `json:"name"`
	Tags            []string        `json:"tags"`
	PersonalNote    *string         `json:"personalNote"`
	CompanyMasterID string          `json:"companyMasterId"`
	CompanyMaster   []CompanyMaster `json:"companyMaster"`
}

// CompanyMaster is the canonical directory entry a Company may be linked to.
type CompanyMaster struct {
	ID              string    `json:"id"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
	CreatorID       string    `json:"creatorId"`
	Name            string    `json:"name"`
	WebsiteURL      *string   `json:"websiteUrl"`
	WikipediaURL    *string   `json:"wikipediaUrl"`
	LinkedinURL     *string   `json:"linkedinUrl"`
	LogoURL         *string   `json:"logoUrl"`
	Description     *string   `json:"description"`
	Industry        *string   `json:"industry"`
	TagsMaster      []string  `json:"tagsMaster"`
	NaicsCode       *string   `json:"naicsCode"`
	StillInBusiness *bool     `json:"stillInBusiness"`
}

// Concept describes the product idea the caller is exploring.
// TargetIndustries is the only field used for query construction.
type Concept struct {
	ID               string           `json:"id"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
	Idea             string           `json:"idea"`
	ProductName      string           `json:"productName"`
	WebsiteURL       *string          `json:"websiteUrl"`
	Overview         *string          `json:"overview"`
	TargetIndustries []string         `json:"targetIndustries"`
	TargetEndUsers   []string         `json:"targetEndUsers"`
	BusinessNatures  []BusinessNature `json:"businessNatures"`
}

// BusinessNature classifies the kind of business a concept operates.
type BusinessNature struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
}

// SearchQueryInput is the projection of a Company and a Concept that drives
// both the search query and the extraction instruction.
type SearchQueryInput struct {
	Name             string
	PersonalNote     string // empty when the company has no note
	Tags             []string
	TargetIndustries []string
}

// NewSearchQueryInput derives the query input from the caller's records.
// The returned value shares no slices with its arguments.
func NewSearchQueryInput(company Company, concept Concept) SearchQueryInput {
	in := SearchQueryInput{
		Name:             company.Name,
		Tags:             append([]string(nil), company.Tags...),
		TargetIndustries: append([]string(nil), concept.TargetIndustries...),
	}
	if company.PersonalNote != nil {
		in.PersonalNote = strings.TrimSpace(*company.PersonalNote)
	}
	return in
}

// HasPersonalNote reports whether the input carries a non-empty note.
func (in SearchQueryInput) HasPersonalNote() bool {
	return in.PersonalNote != ""
}

// SearchResultItem is one normalized web search hit. Missing fields are "".
type SearchResultItem struct {
	Title         string `json:"title"`
	Content       string `json:"content"`
	URL           string `json:"url"`
	PublishedDate string `json:"published_date"`
}

// NormalizeSearchResult maps a provider record onto a SearchResultItem.
// Absent keys, nulls and non-string values all become "".
func NormalizeSearchResult(raw map[string]any) SearchResultItem {
	return SearchResultItem{
		Title:         stringField(raw, "title"),
		Content:       stringField(raw, "content"),
		URL:           stringField(raw, "url"),
		PublishedDate: stringField(raw, "published_date"),
	}
}

// NormalizeSearchResults normalizes every record, preserving order.
// The result is never nil.
func NormalizeSearchResults(raw []map[string]any) []SearchResultItem {
	items := make([]SearchResultItem, 0, len(raw))
	for _, r := range raw {
		items = append(items, NormalizeSearchResult(r))
	}
	return items
}

func stringField(raw map[string]any, key string) string {
	if s, ok := raw[key].(string); ok {
		return s
	}
	return ""
}

// CandidateCompany is a company the extraction stage judged similar.
// Optional fields are serialized as null when absent.
type CandidateCompany struct {
	Name            string   `json:"name"`
	WebsiteURL      *string  `json:"websiteUrl"`
	WikipediaURL    *string  `json:"wikipediaUrl"`
	LinkedinURL     *string  `json:"linkedinUrl"`
	LogoURL         *string  `json:"logoUrl"`
	Description     *string  `json:"description"`
	Industry        *string  `json:"industry"`
	Tags            []string `json:"tags"`
	StillInBusiness *bool    `json:"stillInBusiness"`
}

package model

import "time"

// Partition names for the program catalog.  A program belongs to
// exactly one partition and never moves between them.
const (
	PartitionCurrent  = "current"
	PartitionUpcoming = "upcoming"
)

// ValidPartition reports whether p is one of the known partitions.
func ValidPartition(p string) bool {
	return p == PartitionCurrent || p == PartitionUpcoming
}

// FormatRow is a single label/value pair describing how a program is
// delivered (e.g. "Mode" / "Online, live sessions").
type FormatRow struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Audience describes who a program is aimed at.
type Audience struct {
	Title  string   `json:"title"`
	Points []string `json:"points"`
}

// Program is a catalog item shown on the public programs page.  Items
// within one partition are displayed sorted ascending by Order; after
// any completed reorder the Order values within a partition are
// pairwise distinct.
//
// Fields:
//  ID              – primary key identifier.
//  Partition       – "current" or "upcoming"; immutable once assigned.
//  Order           – integer rank within the partition.
//  Title           – program title.
//  Subtitle        – short tagline.
//  Overview        – summary paragraph.
//  Image           – URL of the program image (upload handled elsewhere).
//  Content         – body paragraphs.
//  Outcomes        – bullet list of expected outcomes.
//  Differences     – bullet list of what makes the program different.
//  Format          – label/value rows describing the delivery format.
//  Audience        – target-audience section.
//  FullDescription – long-form description.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last content-edit timestamp.
type Program struct {
	ID              uint64      `json:"id"`               // programs.id
	Partition       string      `json:"partition"`        // programs.partition_key
	Order           int         `json:"order"`            // programs.ord
	Title           string      `json:"title"`            // programs.title
	Subtitle        string      `json:"subtitle"`         // programs.subtitle
	Overview        string      `json:"overview"`         // programs.overview
	Image           string      `json:"image"`            // programs.image
	Content         []string    `json:"content"`          // programs.content (JSON)
	Outcomes        []string    `json:"outcomes"`         // programs.outcomes (JSON)
	Differences     []string    `json:"differences"`      // programs.differences (JSON)
	Format          []FormatRow `json:"format"`           // programs.format (JSON)
	Audience        Audience    `json:"audience"`         // programs.audience (JSON)
	FullDescription string      `json:"full_description"` // programs.full_description
	CreatedAt       time.Time   `json:"created_at"`       // programs.created_at
	UpdatedAt       time.Time   `json:"updated_at"`       // programs.updated_at
}

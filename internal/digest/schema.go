package digest

import (
	"fmt"
	"strings"
)

// Field is one required key of a schema variant. List fields tolerate
// string-or-list model output and are coerced once into a canonical []string.
type Field struct {
	Key     string
	Heading string
	Hint    string
	List    bool
}

// SchemaVariant is a named, ordered set of required fields a Summary must
// satisfy. Order matters: validation reports the first missing key in
// declared order, and export renders sections in declared order.
type SchemaVariant struct {
	Name   string
	Fields []Field
}

// Digest is the compact 4-field variant used for the persistence-oriented
// workflow.
var Digest = SchemaVariant{
	Name: "digest",
	Fields: []Field{
		{Key: "title", Heading: "Title", Hint: "The title of the paper"},
		{Key: "abstract_summary", Heading: "Abstract Summary", Hint: "A 2-3 sentence summary of the abstract"},
		{Key: "key_points", Heading: "Key Points", Hint: "The main points of the paper", List: true},
		{Key: "methodology", Heading: "Methodology", Hint: "The research methodology used"},
	},
}

// ReadingNote is the richer 7-field variant used for exported reading notes.
var ReadingNote = SchemaVariant{
	Name: "note",
	Fields: []Field{
		{Key: "title", Heading: "Title", Hint: "The title of the paper"},
		{Key: "field_or_topic", Heading: "Field or Topic", Hint: "The academic field or topic area"},
		{Key: "research_question", Heading: "Research Question", Hint: "The main research question(s) addressed"},
		{Key: "methodology", Heading: "Methodology", Hint: "The research methodology used"},
		{Key: "key_findings", Heading: "Key Findings", Hint: "The main findings of the study", List: true},
		{Key: "limitations", Heading: "Limitations", Hint: "The limitations of the study"},
		{Key: "personal_takeaway", Heading: "Personal Takeaway", Hint: "Why this paper matters for the reader"},
	},
}

// VariantByName resolves a CLI/config schema name.
func VariantByName(name string) (SchemaVariant, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "digest":
		return Digest, nil
	case "note", "readingnote", "reading-note":
		return ReadingNote, nil
	}
	return SchemaVariant{}, fmt.Errorf("unknown schema variant %q", name)
}

// shape renders the literal JSON field list embedded in the user prompt.
func (v SchemaVariant) shape() string {
	var b strings.Builder
	b.WriteString("{\n")
	for i, f := range v.Fields {
		b.WriteString(fmt.Sprintf("    %q: ", f.Key))
		if f.List {
			b.WriteString(fmt.Sprintf("[%q, %q]", f.Hint+" 1", f.Hint+" 2"))
		} else {
			b.WriteString(fmt.Sprintf("%q", f.Hint))
		}
		if i < len(v.Fields)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("}")
	return b.String()
}

// Summary is the validated structured record produced from one model
// response. Scalar fields live in Scalar, list fields in List; every
// required key of the variant is present in exactly one of the two maps.
type Summary struct {
	Variant SchemaVariant
	Scalar  map[string]string
	List    map[string][]string
}

// Title returns the summary title, always a required scalar in both variants.
func (s Summary) Title() string { return s.Scalar["title"] }

package normalize

import (
	"sort"

	"github.com/hogarhub/core/internal/domain/entities"
)

// NormalizeNote converts one raw note record. Returns nil when the record
// carries no id. IsManzana is authoritative; when only type=="manzana" is
// present the flag is derived true, and the stored type is re-derived from
// the flag so the two never disagree.
func NormalizeNote(raw any) *entities.Note {
	m, ok := asMap(raw)
	if !ok {
		return nil
	}
	id, _ := m["id"].(string)
	if id == "" {
		return nil
	}

	noteType := entities.NoteTypeNormal
	if s, _ := m["type"].(string); s == string(entities.NoteTypeManzana) {
		noteType = entities.NoteTypeManzana
	}
	isManzana := noteType == entities.NoteTypeManzana
	if v, ok := m["isManzana"].(bool); ok {
		isManzana = v
	}
	if isManzana {
		noteType = entities.NoteTypeManzana
	}

	title, _ := m["title"].(string)
	content, _ := m["content"].(string)

	return &entities.Note{
		ID:        id,
		Title:     title,
		Content:   content,
		Type:      noteType,
		IsManzana: isManzana,
		CreatedAt: NormalizeTimestamp(m["createdAt"]),
		UpdatedAt: NormalizeTimestamp(m["updatedAt"]),
	}
}

// SortNotes orders pinned (manzana) notes first, then by most recent
// updatedAt/createdAt, then title. Returns a new slice.
func SortNotes(notes []entities.Note) []entities.Note {
	out := append([]entities.Note(nil), notes...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.IsManzana != b.IsManzana {
			return a.IsManzana
		}
		recencyA := a.UpdatedAt
		if recencyA == "" {
			recencyA = a.CreatedAt
		}
		recencyB := b.UpdatedAt
		if recencyB == "" {
			recencyB = b.CreatedAt
		}
		if recencyA != recencyB {
			return recencyA > recencyB
		}
		return a.Title < b.Title
	})
	return out
}

package types

import "fmt"

// EquippedItem is one equipment slot on a player. Labels are bounded to
// MaxLabelBytes so the slot encodes to a fixed size.
type EquippedItem struct {
	Item      ID     `json:"item" yaml:"item"`
	ItemClass ID     `json:"item_class" yaml:"item_class"`
	BodyPart  string `json:"body_part" yaml:"body_part"`
	Category  string `json:"category" yaml:"category"`
}

// NewEquippedItem normalizes the labels and rejects any over the limit.
func NewEquippedItem(item, itemClass ID, bodyPart, category string) (EquippedItem, error) {
	bp, err := NormalizeLabel(bodyPart)
	if err != nil {
		return EquippedItem{}, fmt.Errorf("body part: %w", err)
	}
	cat, err := NormalizeLabel(category)
	if err != nil {
		return EquippedItem{}, fmt.Errorf("category: %w", err)
	}
	return EquippedItem{Item: item, ItemClass: itemClass, BodyPart: bp, Category: cat}, nil
}

// Validate checks the slot's identifiers and label limits.
func (e EquippedItem) Validate() error {
	if e.Item.IsZero() {
		return fmt.Errorf("equipped item: %w", ErrInvalidID)
	}
	if len(e.BodyPart) > MaxLabelBytes || len(e.Category) > MaxLabelBytes {
		return ErrLabelTooLong
	}
	return nil
}

package services

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// partition narrows a query to the rows sharing one position sequence.
type partition func(*gorm.DB) *gorm.DB

// lockPartition takes row locks on every row of the partition for the rest of tx.
// Reorders of the same partition are serialized by it.
func lockPartition(tx *gorm.DB, model interface{}, scope partition) error {
	var ids []uint
	return scope(tx.Model(model)).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Order("id ASC").
		Pluck("id", &ids).Error
}

// nextPosition returns max(position)+1 within the partition, 0 when empty.
func nextPosition(tx *gorm.DB, model interface{}, scope partition) (int, error) {
	var top int
	err := scope(tx.Model(model)).Select("COALESCE(MAX(position), -1)").Scan(&top).Error
	if err != nil {
		return 0, err
	}
	return top + 1, nil
}

// shiftForMove makes room for an item moving from one position to another.
// Moving earlier pushes [to, from) down by one; moving later pulls (from, to] up by one.
// The caller sets the moved row's own position afterwards.
func shiftForMove(tx *gorm.DB, model interface{}, scope partition, from, to int) error {
	switch {
	case to == from:
		return nil
	case to < from:
		return scope(tx.Model(model)).
			Where("position >= ? AND position < ?", to, from).
			UpdateColumn("position", gorm.Expr("position + 1")).Error
	default:
		return scope(tx.Model(model)).
			Where("position > ? AND position <= ?", from, to).
			UpdateColumn("position", gorm.Expr("position - 1")).Error
	}
}

// closeGap pulls every row after a removed position up by one.
func closeGap(tx *gorm.DB, model interface{}, scope partition, removed int) error {
	return scope(tx.Model(model)).
		Where("position > ?", removed).
		UpdateColumn("position", gorm.Expr("position - 1")).Error
}

// clampPosition bounds a requested position to [0, size-1].
func clampPosition(pos, size int) int {
	if pos < 0 {
		return 0
	}
	if size > 0 && pos > size-1 {
		return size - 1
	}
	return pos
}

// Package docstore persists one opaque JSON ledger document per user,
// full-replace on every write, last write wins.
package docstore

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alves212/gastos/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the Document Store collaborator backing the ledger.
type Store struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{DB: db}
}

// Get returns the raw document for userID. found == false with a nil
// error means the user simply has no document yet; a non-nil error is a
// real read failure and must not be mistaken for a fresh account.
func (s *Store) Get(userID uint) (json.RawMessage, bool, error) {
	var doc models.Document
	err := s.DB.First(&doc, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read document: %w", err)
	}
	return json.RawMessage(doc.Data), true, nil
}

// Put replaces the whole document for userID.
func (s *Store) Put(userID uint, raw json.RawMessage) error {
	doc := models.Document{
		UserID: userID,
		Data:   datatypes.JSON(raw),
	}
	err := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&doc).Error
	if err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

// Delete removes the document for userID, if any.
func (s *Store) Delete(userID uint) error {
	if err := s.DB.Delete(&models.Document{}, "user_id = ?", userID).Error; err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

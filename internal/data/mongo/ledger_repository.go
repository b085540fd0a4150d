// Package mongo provides the MongoDB implementation of the shift-ledger
// document store. Ledgers are denormalized documents: one per shift per
// date, rewritten in full on every reconciliation run.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shiftpay/pos-ledger/internal/domain/ledger"
)

const (
	// LedgerCollectionName is the name of the shift-ledger collection in MongoDB
	LedgerCollectionName = "shift_ledgers"
)

// LedgerRepository implements the ledger.Repository interface for MongoDB
type LedgerRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewLedgerRepository creates a new MongoDB shift-ledger repository
func NewLedgerRepository(logger *slog.Logger, db *mongo.Database) ledger.Repository {
	return &LedgerRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert stores a reconciled shift ledger, replacing any previous document
// for the same (shift, date). Re-running a reconciliation is therefore
// idempotent at the document level.
func (r *LedgerRepository) Upsert(ctx context.Context, l *ledger.ShiftLedger) error {
	collection := r.db.Collection(LedgerCollectionName)

	doc := toDoc(l)
	doc.UpdatedAt = time.Now()

	filter := bson.M{"shift_id": l.ShiftID, "date": l.Date}
	opts := options.Replace().SetUpsert(true)

	if _, err := collection.ReplaceOne(ctx, filter, doc, opts); err != nil {
		r.logger.Error("Failed to upsert shift ledger",
			"shift_id", l.ShiftID,
			"date", l.Date,
			"error", err)
		return fmt.Errorf("failed to upsert shift ledger: %w", err)
	}

	return nil
}

// GetByShiftID retrieves the latest ledger document for a shift.
// Returns ErrLedgerNotFound if no document exists.
func (r *LedgerRepository) GetByShiftID(ctx context.Context, shiftID int64) (*ledger.ShiftLedger, error) {
	collection := r.db.Collection(LedgerCollectionName)

	filter := bson.M{"shift_id": shiftID}
	opts := options.FindOne().SetSort(bson.M{"updated_at": -1})

	var doc shiftLedgerDoc
	err := collection.FindOne(ctx, filter, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ledger.ErrLedgerNotFound{ShiftID: shiftID}
		}
		r.logger.Error("Failed to get shift ledger",
			"shift_id", shiftID,
			"error", err)
		return nil, fmt.Errorf("failed to get shift ledger: %w", err)
	}

	l, err := fromDoc(&doc)
	if err != nil {
		return nil, fmt.Errorf("failed to decode shift ledger %d: %w", shiftID, err)
	}
	return l, nil
}

// GetByDate retrieves every shift ledger reconciled for a business date,
// ordered by shift id.
func (r *LedgerRepository) GetByDate(ctx context.Context, date string) ([]*ledger.ShiftLedger, error) {
	collection := r.db.Collection(LedgerCollectionName)

	filter := bson.M{"date": date}
	opts := options.Find().SetSort(bson.M{"shift_id": 1})

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get shift ledgers by date",
			"date", date,
			"error", err)
		return nil, fmt.Errorf("failed to get shift ledgers by date: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []shiftLedgerDoc
	if err := cursor.All(ctx, &docs); err != nil {
		r.logger.Error("Failed to decode shift ledgers",
			"date", date,
			"error", err)
		return nil, fmt.Errorf("failed to decode shift ledgers: %w", err)
	}

	ledgers := make([]*ledger.ShiftLedger, 0, len(docs))
	for i := range docs {
		l, err := fromDoc(&docs[i])
		if err != nil {
			return nil, fmt.Errorf("failed to decode shift ledger %d: %w", docs[i].ShiftID, err)
		}
		ledgers = append(ledgers, l)
	}
	return ledgers, nil
}

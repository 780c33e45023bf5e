package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/expensetrack/expense-api/internal/core/domain"
)

const collectionExpenses = "expenses"

type ExpenseRepository struct {
	col *mongo.Collection
}

func NewExpenseRepository(db *mongo.Database) *ExpenseRepository {
	return &ExpenseRepository{col: db.Collection(collectionExpenses)}
}

type mongoExpense struct {
	ID          primitive.ObjectID `bson:"_id"`
	UserID      primitive.ObjectID `bson:"user_id"`
	Amount      float64            `bson:"amount"`
	Category    string             `bson:"category"`
	Date        time.Time          `bson:"date"`
	Description string             `bson:"description,omitempty"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

func (me *mongoExpense) toDomain() *domain.Expense {
	return &domain.Expense{
		ID:          me.ID.Hex(),
		UserID:      me.UserID.Hex(),
		Amount:      me.Amount,
		Category:    me.Category,
		Date:        me.Date.UTC(),
		Description: me.Description,
		CreatedAt:   me.CreatedAt.UTC(),
		UpdatedAt:   me.UpdatedAt.UTC(),
	}
}

// Create inserts a new expense and sets e.ID.
func (r *ExpenseRepository) Create(ctx context.Context, e *domain.Expense) error {
	owner, err := primitive.ObjectIDFromHex(e.UserID)
	if err != nil {
		return fmt.Errorf("create expense: invalid owner id %q", e.UserID)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoExpense{
		ID:          primitive.NewObjectID(),
		UserID:      owner,
		Amount:      e.Amount,
		Category:    e.Category,
		Date:        e.Date,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	e.ID = doc.ID.Hex()
	return nil
}

// FindByID retrieves an expense regardless of owner; callers enforce ownership.
func (r *ExpenseRepository) FindByID(ctx context.Context, id string) (*domain.Expense, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrExpenseNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var me mongoExpense
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&me); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrExpenseNotFound
		}
		return nil, err
	}
	return me.toDomain(), nil
}

// ListByOwner returns userID's expenses sorted by date, newest first.
func (r *ExpenseRepository) ListByOwner(ctx context.Context, userID string) ([]*domain.Expense, error) {
	owner, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return []*domain.Expense{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"user_id": owner}, opts)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer cur.Close(ctx)

	out := make([]*domain.Expense, 0)
	for cur.Next(ctx) {
		var me mongoExpense
		if err := cur.Decode(&me); err != nil {
			return nil, fmt.Errorf("decode expense: %w", err)
		}
		out = append(out, me.toDomain())
	}
	return out, cur.Err()
}

// UpdateOwned rewrites the editable fields; the filter includes the owner.
func (r *ExpenseRepository) UpdateOwned(ctx context.Context, e *domain.Expense) error {
	filter, err := ownedFilter(e.ID, e.UserID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"amount":      e.Amount,
		"category":    e.Category,
		"date":        e.Date,
		"description": e.Description,
		"updated_at":  e.UpdatedAt,
	}}
	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrExpenseNotFound
	}
	return nil
}

// DeleteOwned deletes by id and owner.
func (r *ExpenseRepository) DeleteOwned(ctx context.Context, id, userID string) error {
	filter, err := ownedFilter(id, userID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrExpenseNotFound
	}
	return nil
}

// SumByCategory groups the owner's expenses dated in [from, to) by category.
func (r *ExpenseRepository) SumByCategory(ctx context.Context, userID string, from, to time.Time) ([]domain.CategoryTotal, error) {
	owner, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return []domain.CategoryTotal{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"user_id": owner,
			"date":    bson.M{"$gte": from, "$lt": to},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":          "$category",
			"total_amount": bson.M{"$sum": "$amount"},
			"count":        bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "total_amount", Value: -1}, {Key: "_id", Value: 1}}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate expenses: %w", err)
	}
	defer cur.Close(ctx)

	var rows []struct {
		Category    string  `bson:"_id"`
		TotalAmount float64 `bson:"total_amount"`
		Count       int     `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}

	out := make([]domain.CategoryTotal, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.CategoryTotal{
			Category:    row.Category,
			TotalAmount: row.TotalAmount,
			Count:       row.Count,
		})
	}
	return out, nil
}

// EnsureIndexes creates the owner/date index used by list and summary.
func (r *ExpenseRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: -1}},
	})
	return err
}

func ownedFilter(id, userID string) (bson.M, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrExpenseNotFound
	}
	owner, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, domain.ErrExpenseNotFound
	}
	return bson.M{"_id": oid, "user_id": owner}, nil
}

// Package adapters はsymbollistフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"

	"signal_backend/internal/feature/symbollist/domain/entity"
	"signal_backend/internal/feature/symbollist/usecase"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// upsertBatchSize は1回の INSERT に含める銘柄数です。
const upsertBatchSize = 500

// symbolGorm はSymbolRepositoryインターフェースのgorm実装です（PostgreSQL / SQLite）。
type symbolGorm struct {
	db *gorm.DB
}

var _ usecase.SymbolRepository = (*symbolGorm)(nil)

// NewSymbolRepository は指定されたDB接続でsymbolGormリポジトリの新しいインスタンスを生成します。
func NewSymbolRepository(db *gorm.DB) *symbolGorm {
	return &symbolGorm{db: db}
}

// ListActive はsort_key順にすべてのアクティブな銘柄を返します。
func (r *symbolGorm) ListActive(ctx context.Context) ([]entity.Symbol, error) {
	var symbols []entity.Symbol
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_key ASC").
		Find(&symbols).Error; err != nil {
		return nil, err
	}
	return symbols, nil
}

// ListActiveCodes はsort_key順にアクティブな銘柄のコードのみを返します。
func (r *symbolGorm) ListActiveCodes(ctx context.Context) ([]string, error) {
	var codes []string
	if err := r.db.WithContext(ctx).
		Model(&entity.Symbol{}).
		Where("is_active = ?", true).
		Order("sort_key ASC").
		Pluck("code", &codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}

// UpsertBatch はcodeをキーに銘柄を挿入または更新します。
func (r *symbolGorm) UpsertBatch(ctx context.Context, symbols []entity.Symbol) error {
	if len(symbols) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "market", "exchange", "type", "is_active", "sort_key", "updated_at"}),
		}).
		CreateInBatches(&symbols, upsertBatchSize).Error
}

// Deactivate は指定されたコードの銘柄を非アクティブにします。
func (r *symbolGorm) Deactivate(ctx context.Context, codes []string) error {
	if len(codes) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&entity.Symbol{}).
		Where("code IN ?", codes).
		Update("is_active", false).Error
}

// Exists はcodeがアクティブな銘柄としてカタログに存在するかを返します。
func (r *symbolGorm) Exists(ctx context.Context, code string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).
		Model(&entity.Symbol{}).
		Where("code = ? AND is_active = ?", code, true).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

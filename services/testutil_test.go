package services

import (
	"testing"
	"time"

	"proposal-cms/cache"
	"proposal-cms/compiler"
	"proposal-cms/config"
	"proposal-cms/models"
	"proposal-cms/repositories"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	// In-memory sqlite is per-connection; keep the pool at one so every
	// query sees the same database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, config.Migrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	user := &models.User{
		Username: "author",
		Email:    "author@example.com",
		Password: "hashed",
		Role:     models.RoleAuthor,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedProposal(t *testing.T, db *gorm.DB, ownerID uint) *models.Proposal {
	t.Helper()

	proposal := &models.Proposal{
		OwnerID: ownerID,
		Title:   "Q3 offer",
		Brand:   models.BrandAcme,
		Status:  models.StatusDraft,
	}
	require.NoError(t, db.Create(proposal).Error)
	return proposal
}

func seedBlocks(t *testing.T, db *gorm.DB, proposalID uint, kinds ...string) []models.ProposalBlock {
	t.Helper()

	blocks := make([]models.ProposalBlock, len(kinds))
	for i, kind := range kinds {
		blocks[i] = models.ProposalBlock{
			ProposalID: proposalID,
			BlockKind:  kind,
			OrderKey:   i,
			Enabled:    true,
			Content:    "{}",
		}
		require.NoError(t, db.Create(&blocks[i]).Error)
	}
	return blocks
}

func orderKeys(t *testing.T, db *gorm.DB, proposalID uint) []int {
	t.Helper()

	blocks, err := repositories.NewBlockRepository(db).GetByProposal(proposalID)
	require.NoError(t, err)
	keys := make([]int, len(blocks))
	for i, block := range blocks {
		keys[i] = block.OrderKey
	}
	return keys
}

func newTestBlockRepo(db *gorm.DB) repositories.BlockRepository {
	return repositories.NewBlockRepository(db)
}

func newOrderingService(db *gorm.DB) OrderingService {
	return NewOrderingService(
		db,
		repositories.NewProposalRepository(db),
		repositories.NewBlockRepository(db),
		repositories.NewComponentRepository(db),
	)
}

func newComponentService(db *gorm.DB, ttl time.Duration) ComponentService {
	return NewComponentService(
		db,
		repositories.NewComponentRepository(db),
		compiler.New(2*time.Second),
		cache.NewRenderCache(ttl),
	)
}

func newAssemblyService(db *gorm.DB) AssemblyService {
	return NewAssemblyService(
		db,
		repositories.NewProposalRepository(db),
		repositories.NewBlockRepository(db),
		repositories.NewTemplateRepository(db),
		repositories.NewComponentRepository(db),
	)
}

package services

import (
	"encoding/json"
	"testing"

	"proposal-cms/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertBlockDefaultsToHead(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	proposal := seedProposal(t, db, user.ID)
	seeded := seedBlocks(t, db, proposal.ID, "hero", "pricing")
	svc := newOrderingService(db)

	created, err := svc.InsertBlock(proposal.ID, models.CreateBlockRequest{
		BlockKind: "testimonial",
	}, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, created.OrderKey)
	assert.True(t, created.Enabled)

	keys := orderKeys(t, db, proposal.ID)
	assert.Equal(t, []int{0, 1, 2}, keys)

	blocks, err := newTestBlockRepo(db).GetByProposal(proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, "testimonial", blocks[0].BlockKind)
	assert.Equal(t, seeded[0].ID, blocks[1].ID)
	assert.Equal(t, seeded[1].ID, blocks[2].ID)
}

func TestInsertBlockAtPosition(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	proposal := seedProposal(t, db, user.ID)
	seedBlocks(t, db, proposal.ID, "hero", "pricing")
	svc := newOrderingService(db)

	position := 1
	created, err := svc.InsertBlock(proposal.ID, models.CreateBlockRequest{
		BlockKind: "gallery",
		Position:  &position,
	}, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, created.OrderKey)

	blocks, err := newTestBlockRepo(db).GetByProposal(proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"hero", "gallery", "pricing"}, blockKinds(blocks))
}

func TestInsertBlockPositionOutOfRange(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	proposal := seedProposal(t, db, user.ID)
	seedBlocks(t, db, proposal.ID, "hero")
	svc := newOrderingService(db)

	position := 5
	_, err := svc.InsertBlock(proposal.ID, models.CreateBlockRequest{
		BlockKind: "gallery",
		Position:  &position,
	}, user.ID)
	assert.IsType(t, models.ErrorBadRequest{}, err)
}

func TestInsertBlockRequiresOwner(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	proposal := seedProposal(t, db, user.ID)
	svc := newOrderingService(db)

	_, err := svc.InsertBlock(proposal.ID, models.CreateBlockRequest{
		BlockKind: "hero",
	}, user.ID+1)
	assert.IsType(t, models.ErrorUnauthorized{}, err)
}

func TestDeleteBlockClosesGap(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	proposal := seedProposal(t, db, user.ID)
	seeded := seedBlocks(t, db, proposal.ID, "hero", "pricing", "footer")
	svc := newOrderingService(db)

	require.NoError(t, svc.DeleteBlock(proposal.ID, seeded[1].ID, user.ID))

	blocks, err := newTestBlockRepo(db).GetByProposal(proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"hero", "footer"}, blockKinds(blocks))
	assert.Equal(t, []int{0, 1}, orderKeys(t, db, proposal.ID))
}

func TestDeleteBlockFromOtherProposal(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	proposal := seedProposal(t, db, user.ID)
	other := seedProposal(t, db, user.ID)
	blocks := seedBlocks(t, db, other.ID, "hero")
	svc := newOrderingService(db)

	err := svc.DeleteBlock(proposal.ID, blocks[0].ID, user.ID)
	assert.IsType(t, models.ErrorNotFound{}, err)
}

func TestPatchBlocksReorders(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	proposal := seedProposal(t, db, user.ID)
	seeded := seedBlocks(t, db, proposal.ID, "hero", "pricing", "footer")
	svc := newOrderingService(db)

	disabled := false
	blocks, err := svc.PatchBlocks(proposal.ID, models.PatchBlocksRequest{
		Blocks: []models.BlockPatch{
			{ID: seeded[2].ID, OrderKey: 0},
			{ID: seeded[0].ID, OrderKey: 1, Enabled: &disabled},
			{ID: seeded[1].ID, OrderKey: 2, Content: json.RawMessage(`{"plan":"pro"}`)},
		},
	}, user.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{"footer", "hero", "pricing"}, blockKinds(blocks))
	assert.Equal(t, []int{0, 1, 2}, orderKeys(t, db, proposal.ID))
	assert.False(t, blocks[1].Enabled)
	assert.JSONEq(t, `{"plan":"pro"}`, blocks[2].Content)
}

func TestPatchBlocksCompactsSparseKeys(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	proposal := seedProposal(t, db, user.ID)
	seeded := seedBlocks(t, db, proposal.ID, "hero", "pricing")
	svc := newOrderingService(db)

	// Clients may send gapped keys; the final assignment is always dense.
	_, err := svc.PatchBlocks(proposal.ID, models.PatchBlocksRequest{
		Blocks: []models.BlockPatch{
			{ID: seeded[1].ID, OrderKey: 3},
			{ID: seeded[0].ID, OrderKey: 10},
		},
	}, user.ID)
	require.NoError(t, err)

	blocks, err := newTestBlockRepo(db).GetByProposal(proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"pricing", "hero"}, blockKinds(blocks))
	assert.Equal(t, []int{0, 1}, orderKeys(t, db, proposal.ID))
}

func TestPatchBlocksRejectsPartialList(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	proposal := seedProposal(t, db, user.ID)
	seeded := seedBlocks(t, db, proposal.ID, "hero", "pricing")
	svc := newOrderingService(db)

	_, err := svc.PatchBlocks(proposal.ID, models.PatchBlocksRequest{
		Blocks: []models.BlockPatch{{ID: seeded[0].ID, OrderKey: 0}},
	}, user.ID)
	assert.IsType(t, models.ErrorBadRequest{}, err)
}

func TestPatchBlocksRejectsForeignBlock(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	proposal := seedProposal(t, db, user.ID)
	other := seedProposal(t, db, user.ID)
	seedBlocks(t, db, proposal.ID, "hero")
	foreign := seedBlocks(t, db, other.ID, "pricing")
	svc := newOrderingService(db)

	_, err := svc.PatchBlocks(proposal.ID, models.PatchBlocksRequest{
		Blocks: []models.BlockPatch{{ID: foreign[0].ID, OrderKey: 0}},
	}, user.ID)
	assert.IsType(t, models.ErrorBadRequest{}, err)
}

func TestOrderKeysStayDenseAcrossOperations(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	proposal := seedProposal(t, db, user.ID)
	svc := newOrderingService(db)

	kinds := []string{"hero", "pricing", "footer", "gallery", "testimonial"}
	for _, kind := range kinds {
		_, err := svc.InsertBlock(proposal.ID, models.CreateBlockRequest{BlockKind: kind}, user.ID)
		require.NoError(t, err)
	}

	blocks, err := newTestBlockRepo(db).GetByProposal(proposal.ID)
	require.NoError(t, err)
	require.NoError(t, svc.DeleteBlock(proposal.ID, blocks[2].ID, user.ID))
	require.NoError(t, svc.DeleteBlock(proposal.ID, blocks[0].ID, user.ID))

	position := 2
	_, err = svc.InsertBlock(proposal.ID, models.CreateBlockRequest{BlockKind: "cta", Position: &position}, user.ID)
	require.NoError(t, err)

	keys := orderKeys(t, db, proposal.ID)
	assert.Equal(t, []int{0, 1, 2, 3}, keys)
}

func TestConflictRetryGivesUpAfterSecondRace(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderingService(db).(*orderingService)

	calls := 0
	err := svc.withConflictRetry(func() error {
		calls++
		return errRevisionRace
	})
	assert.IsType(t, models.ErrorConflict{}, err)
	assert.Equal(t, 2, calls)
}

func TestConflictRetrySucceedsOnFreshAttempt(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderingService(db).(*orderingService)

	calls := 0
	err := svc.withConflictRetry(func() error {
		calls++
		if calls == 1 {
			return errRevisionRace
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func blockKinds(blocks []models.ProposalBlock) []string {
	kinds := make([]string, len(blocks))
	for i, block := range blocks {
		kinds[i] = block.BlockKind
	}
	return kinds
}

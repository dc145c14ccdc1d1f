package services

import (
	"testing"
	"time"

	"proposal-cms/models"
	"proposal-cms/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const heroSourceV1 = `<section><h1>{{.Title}}</h1><p>{{.Subtitle}}</p></section>`
const heroSourceV2 = `<section class="hero"><h1>{{.Title}}</h1></section>`

func TestUpdateCreatesAndIncrementsVersions(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	svc := newComponentService(db, time.Minute)

	v1, err := svc.Update(models.UpsertComponentRequest{
		BlockKind:         "hero",
		SourceCode:        heroSourceV1,
		ChangeDescription: "initial hero",
	}, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, v1.VersionNumber)
	assert.Equal(t, heroSourceV1, v1.SourceCode)
	assert.NotEmpty(t, v1.CompiledCode)

	v2, err := svc.Update(models.UpsertComponentRequest{
		BlockKind:  "hero",
		SourceCode: heroSourceV2,
	}, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, v2.VersionNumber)

	source, err := repositories.NewComponentRepository(db).GetSourceByKind("hero")
	require.NoError(t, err)
	assert.Equal(t, 2, source.Version)
	assert.Equal(t, heroSourceV2, source.SourceCode)
}

func TestGetVersionRoundTrip(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	svc := newComponentService(db, time.Minute)

	_, err := svc.Update(models.UpsertComponentRequest{BlockKind: "hero", SourceCode: heroSourceV1}, user.ID)
	require.NoError(t, err)
	_, err = svc.Update(models.UpsertComponentRequest{BlockKind: "hero", SourceCode: heroSourceV2}, user.ID)
	require.NoError(t, err)

	v1, err := svc.GetVersion("hero", 1)
	require.NoError(t, err)
	assert.Equal(t, heroSourceV1, v1.SourceCode)

	v2, err := svc.GetVersion("hero", 2)
	require.NoError(t, err)
	assert.Equal(t, heroSourceV2, v2.SourceCode)

	_, err = svc.GetVersion("hero", 3)
	assert.IsType(t, models.ErrorNotFound{}, err)
}

func TestRollbackCreatesNewVersionAndKeepsHistory(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	svc := newComponentService(db, time.Minute)

	_, err := svc.Update(models.UpsertComponentRequest{BlockKind: "hero", SourceCode: heroSourceV1}, user.ID)
	require.NoError(t, err)
	_, err = svc.Update(models.UpsertComponentRequest{BlockKind: "hero", SourceCode: heroSourceV2}, user.ID)
	require.NoError(t, err)

	rolled, err := svc.Rollback("hero", models.RollbackComponentRequest{
		TargetVersion: 1,
		Reason:        "v2 broke layout",
	}, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, rolled.VersionNumber)
	assert.Equal(t, heroSourceV1, rolled.SourceCode)
	assert.Contains(t, rolled.ChangeDescription, "rollback to version 1")

	versions, err := svc.GetVersions("hero")
	require.NoError(t, err)
	require.Len(t, versions, 3)
	// newest first
	assert.Equal(t, 3, versions[0].VersionNumber)
	assert.Equal(t, heroSourceV2, versions[1].SourceCode)
	assert.Equal(t, heroSourceV1, versions[2].SourceCode)
}

func TestRollbackToMissingVersion(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	svc := newComponentService(db, time.Minute)

	_, err := svc.Update(models.UpsertComponentRequest{BlockKind: "hero", SourceCode: heroSourceV1}, user.ID)
	require.NoError(t, err)

	_, err = svc.Rollback("hero", models.RollbackComponentRequest{TargetVersion: 9}, user.ID)
	assert.IsType(t, models.ErrorNotFound{}, err)
}

func TestCompileFailureLeavesSourceUntouched(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	svc := newComponentService(db, time.Minute)

	_, err := svc.Update(models.UpsertComponentRequest{BlockKind: "hero", SourceCode: heroSourceV1}, user.ID)
	require.NoError(t, err)

	_, err = svc.Update(models.UpsertComponentRequest{
		BlockKind:  "hero",
		SourceCode: `<h1>{{.Title</h1>`,
	}, user.ID)
	assert.IsType(t, models.ErrorCompile{}, err)

	source, err := repositories.NewComponentRepository(db).GetSourceByKind("hero")
	require.NoError(t, err)
	assert.Equal(t, 1, source.Version)
	assert.Equal(t, heroSourceV1, source.SourceCode)

	versions, err := svc.GetVersions("hero")
	require.NoError(t, err)
	assert.Len(t, versions, 1)
}

func TestGetArtifactCacheFlag(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	svc := newComponentService(db, time.Minute)

	_, err := svc.Update(models.UpsertComponentRequest{BlockKind: "hero", SourceCode: heroSourceV1}, user.ID)
	require.NoError(t, err)

	first, err := svc.GetArtifact("hero", 0)
	require.NoError(t, err)
	assert.False(t, first.CacheHit)
	assert.Equal(t, 1, first.Artifact.Version)

	second, err := svc.GetArtifact("hero", 0)
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Equal(t, first.Artifact.CompiledCode, second.Artifact.CompiledCode)
}

func TestGetArtifactUnknownKind(t *testing.T) {
	db := newTestDB(t)
	svc := newComponentService(db, time.Minute)

	_, err := svc.GetArtifact("nonexistent", 0)
	assert.IsType(t, models.ErrorBadRequest{}, err)
}

func TestGetArtifactBindingNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := newComponentService(db, time.Minute)

	_, err := svc.GetArtifact("hero", 42)
	assert.IsType(t, models.ErrorNotFound{}, err)
}

func TestUpdateInvalidatesCanonicalCacheEntry(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	svc := newComponentService(db, time.Minute)

	_, err := svc.Update(models.UpsertComponentRequest{BlockKind: "hero", SourceCode: heroSourceV1}, user.ID)
	require.NoError(t, err)
	_, err = svc.GetArtifact("hero", 0)
	require.NoError(t, err)

	_, err = svc.Update(models.UpsertComponentRequest{BlockKind: "hero", SourceCode: heroSourceV2}, user.ID)
	require.NoError(t, err)

	after, err := svc.GetArtifact("hero", 0)
	require.NoError(t, err)
	assert.False(t, after.CacheHit)
	assert.Equal(t, 2, after.Artifact.Version)
}

func TestBindingResolvesToSnapshottedVersion(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	componentSvc := newComponentService(db, time.Minute)
	assemblySvc := newAssemblyService(db)

	_, err := componentSvc.Update(models.UpsertComponentRequest{BlockKind: "hero", SourceCode: heroSourceV1}, user.ID)
	require.NoError(t, err)

	template := &models.BlockTemplate{
		BlockKind:      "hero",
		Name:           "Standard hero",
		Brand:          models.BrandAcme,
		Active:         true,
		DefaultContent: `{"title":"Hello"}`,
	}
	require.NoError(t, db.Create(template).Error)

	proposal, err := assemblySvc.AssembleProposal(models.CreateProposalRequest{
		Title: "Pinned offer",
		Brand: models.BrandAcme,
	}, user.ID)
	require.NoError(t, err)
	require.NotNil(t, proposal.Blocks[0].BindingID)
	bindingID := *proposal.Blocks[0].BindingID

	// Canonical moves to v2; the proposal's binding must still resolve to v1.
	_, err = componentSvc.Update(models.UpsertComponentRequest{BlockKind: "hero", SourceCode: heroSourceV2}, user.ID)
	require.NoError(t, err)

	bound, err := componentSvc.GetArtifact("hero", bindingID)
	require.NoError(t, err)
	assert.Equal(t, 1, bound.Artifact.Version)

	canonical, err := componentSvc.GetArtifact("hero", 0)
	require.NoError(t, err)
	assert.Equal(t, 2, canonical.Artifact.Version)
	assert.NotEqual(t, bound.Artifact.CompiledCode, canonical.Artifact.CompiledCode)
}

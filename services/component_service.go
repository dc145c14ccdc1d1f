package services

import (
	"errors"
	"fmt"

	"proposal-cms/cache"
	"proposal-cms/compiler"
	"proposal-cms/models"
	"proposal-cms/repositories"

	"gorm.io/gorm"
)

// ComponentService owns the canonical compiled implementation of every block
// kind, its immutable version history, and the render cache in front of it.
type ComponentService interface {
	GetArtifact(blockKind string, bindingID uint) (*models.ArtifactResponse, error)
	Update(req models.UpsertComponentRequest, authorID uint) (*models.ComponentVersion, error)
	Rollback(blockKind string, req models.RollbackComponentRequest, authorID uint) (*models.ComponentVersion, error)
	GetVersions(blockKind string) ([]models.ComponentVersion, error)
	GetVersion(blockKind string, versionNumber int) (*models.ComponentVersion, error)
	Invalidate(target string)
}

type componentService struct {
	db            *gorm.DB
	componentRepo repositories.ComponentRepository
	compiler      *compiler.Compiler
	renderCache   *cache.RenderCache
}

func NewComponentService(db *gorm.DB, componentRepo repositories.ComponentRepository, comp *compiler.Compiler, renderCache *cache.RenderCache) ComponentService {
	return &componentService{
		db:            db,
		componentRepo: componentRepo,
		compiler:      comp,
		renderCache:   renderCache,
	}
}

func (s *componentService) GetArtifact(blockKind string, bindingID uint) (*models.ArtifactResponse, error) {
	key := cache.Key(blockKind, bindingID)
	if artifact, hit := s.renderCache.Get(key); hit {
		return &models.ArtifactResponse{Artifact: *artifact, CacheHit: true}, nil
	}

	artifact, err := s.loadArtifact(blockKind, bindingID)
	if err != nil {
		return nil, err
	}
	s.renderCache.Put(key, artifact)
	return &models.ArtifactResponse{Artifact: *artifact, CacheHit: false}, nil
}

func (s *componentService) loadArtifact(blockKind string, bindingID uint) (*models.CompiledArtifact, error) {
	if bindingID > 0 {
		binding, err := s.componentRepo.GetBinding(bindingID)
		if err != nil || binding.BlockKind != blockKind {
			return nil, models.ErrorNotFound{Message: "binding not found"}
		}
		return &models.CompiledArtifact{
			BlockKind:    binding.BlockKind,
			CompiledCode: binding.CompiledCode,
			Schema:       binding.Schema,
			Version:      binding.VersionNumber,
			GeneratedAt:  binding.CreatedAt,
		}, nil
	}

	source, err := s.componentRepo.GetSourceByKind(blockKind)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrorBadRequest{Message: "unknown block kind"}
		}
		return nil, err
	}
	if !source.Active {
		return nil, models.ErrorNotFound{Message: "component is disabled"}
	}
	return &models.CompiledArtifact{
		BlockKind:    source.BlockKind,
		CompiledCode: source.CompiledCode,
		Schema:       source.Schema,
		Version:      source.Version,
		GeneratedAt:  source.UpdatedAt,
	}, nil
}

// Update compiles the submitted source and, on success, bumps the canonical
// row and appends the matching history row in one transaction. A compile
// failure leaves both untouched.
func (s *componentService) Update(req models.UpsertComponentRequest, authorID uint) (*models.ComponentVersion, error) {
	artifact, err := s.compiler.Compile(req.SourceCode)
	if err != nil {
		return nil, asModelCompileError(err)
	}

	description := req.ChangeDescription
	if description == "" {
		description = "source update"
	}
	version, err := s.commitVersion(req.BlockKind, req.SourceCode, artifact.Code, artifact.Schema, description, authorID)
	if err != nil {
		return nil, err
	}
	s.renderCache.Invalidate(cache.Key(req.BlockKind, 0))
	return version, nil
}

// Rollback appends a new head version whose code equals the target's.
// History is never rewritten.
func (s *componentService) Rollback(blockKind string, req models.RollbackComponentRequest, authorID uint) (*models.ComponentVersion, error) {
	source, err := s.componentRepo.GetSourceByKind(blockKind)
	if err != nil {
		return nil, models.ErrorNotFound{Message: "unknown block kind"}
	}
	target, err := s.componentRepo.GetVersion(source.ID, req.TargetVersion)
	if err != nil {
		return nil, models.ErrorNotFound{Message: fmt.Sprintf("version %d not found", req.TargetVersion)}
	}

	description := fmt.Sprintf("rollback to version %d", req.TargetVersion)
	if req.Reason != "" {
		description += ": " + req.Reason
	}
	// The compiler is deterministic, so the target's compiled code is
	// reused as-is.
	version, err := s.commitVersion(blockKind, target.SourceCode, target.CompiledCode, target.Schema, description, authorID)
	if err != nil {
		return nil, err
	}
	s.renderCache.Invalidate(cache.Key(blockKind, 0))
	return version, nil
}

func (s *componentService) commitVersion(blockKind, sourceCode, compiledCode, schema, description string, authorID uint) (*models.ComponentVersion, error) {
	var created *models.ComponentVersion

	err := s.db.Transaction(func(tx *gorm.DB) error {
		components := s.componentRepo.WithTx(tx)

		source, err := components.GetSourceByKind(blockKind)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			source = &models.ComponentSource{
				BlockKind:    blockKind,
				SourceCode:   sourceCode,
				CompiledCode: compiledCode,
				Schema:       schema,
				Version:      1,
				Active:       true,
			}
			if err := components.CreateSource(source); err != nil {
				return err
			}
		} else if err != nil {
			return err
		} else {
			previous := source.Version
			source.SourceCode = sourceCode
			source.CompiledCode = compiledCode
			source.Schema = schema
			source.Version = previous + 1
			ok, err := components.UpdateSourceIfVersion(source, previous)
			if err != nil {
				return err
			}
			if !ok {
				return models.ErrorConflict{Message: "component was updated concurrently"}
			}
		}

		version := &models.ComponentVersion{
			ComponentSourceID: source.ID,
			VersionNumber:     source.Version,
			SourceCode:        sourceCode,
			CompiledCode:      compiledCode,
			Schema:            schema,
			ChangeDescription: description,
			AuthorID:          authorID,
		}
		if err := components.CreateVersion(version); err != nil {
			return err
		}
		created = version
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *componentService) GetVersions(blockKind string) ([]models.ComponentVersion, error) {
	source, err := s.componentRepo.GetSourceByKind(blockKind)
	if err != nil {
		return nil, models.ErrorNotFound{Message: "unknown block kind"}
	}
	return s.componentRepo.GetVersions(source.ID)
}

func (s *componentService) GetVersion(blockKind string, versionNumber int) (*models.ComponentVersion, error) {
	source, err := s.componentRepo.GetSourceByKind(blockKind)
	if err != nil {
		return nil, models.ErrorNotFound{Message: "unknown block kind"}
	}
	version, err := s.componentRepo.GetVersion(source.ID, versionNumber)
	if err != nil {
		return nil, models.ErrorNotFound{Message: fmt.Sprintf("version %d not found", versionNumber)}
	}
	return version, nil
}

// Invalidate drops cache entries only; persisted source is untouched.
func (s *componentService) Invalidate(target string) {
	if target == "all" {
		s.renderCache.InvalidateAll()
		return
	}
	s.renderCache.Invalidate(target)
}

func asModelCompileError(err error) error {
	var compileErr *compiler.Error
	if errors.As(err, &compileErr) {
		return models.ErrorCompile{
			Message: compileErr.Message,
			Line:    compileErr.Line,
			Column:  compileErr.Column,
		}
	}
	return err
}

package usecase

import (
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/transfers-api/internal/application/dto"
	"github.com/tu-usuario/transfers-api/internal/domain"
	"github.com/tu-usuario/transfers-api/internal/domain/entity"
	"github.com/tu-usuario/transfers-api/internal/domain/repository"
)

// BranchUseCase registro de sucursales y membresías usuario-sucursal.
type BranchUseCase struct {
	repo     repository.BranchRepository
	userRepo repository.UserRepository
}

// NewBranchUseCase construye el caso de uso.
func NewBranchUseCase(repo repository.BranchRepository, userRepo repository.UserRepository) *BranchUseCase {
	return &BranchUseCase{repo: repo, userRepo: userRepo}
}

// Create crea una sucursal nueva.
func (uc *BranchUseCase) Create(tenantID string, in dto.CreateBranchRequest) (*dto.BranchResponse, error) {
	if in.Name == "" {
		return nil, domain.ErrValidation
	}
	now := time.Now()
	branch := &entity.Branch{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		Name:      in.Name,
		Address:   in.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(branch); err != nil {
		return nil, err
	}
	return toBranchResponse(branch), nil
}

// GetByID obtiene una sucursal por ID dentro del tenant.
func (uc *BranchUseCase) GetByID(tenantID, id string) (*dto.BranchResponse, error) {
	branch, err := uc.repo.GetByID(tenantID, id)
	if err != nil {
		return nil, err
	}
	if branch == nil {
		return nil, domain.ErrNotFound
	}
	return toBranchResponse(branch), nil
}

// List lista sucursales del tenant con paginación.
func (uc *BranchUseCase) List(tenantID string, limit, offset int) (*dto.BranchListResponse, error) {
	list, err := uc.repo.ListByTenant(tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.BranchResponse, 0, len(list))
	for _, b := range list {
		items = append(items, *toBranchResponse(b))
	}
	return &dto.BranchListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// AddMember vincula un usuario del tenant a la sucursal.
func (uc *BranchUseCase) AddMember(tenantID, branchID string, in dto.AddBranchMemberRequest) error {
	branch, err := uc.repo.GetByID(tenantID, branchID)
	if err != nil {
		return err
	}
	if branch == nil {
		return domain.ErrNotFound
	}
	user, err := uc.userRepo.GetByID(tenantID, in.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrNotFound
	}
	return uc.repo.AddMember(&entity.BranchMembership{
		UserID:    in.UserID,
		BranchID:  branchID,
		TenantID:  tenantID,
		CreatedAt: time.Now(),
	})
}

func toBranchResponse(b *entity.Branch) *dto.BranchResponse {
	return &dto.BranchResponse{
		ID:        b.ID,
		TenantID:  b.TenantID,
		Name:      b.Name,
		Address:   b.Address,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

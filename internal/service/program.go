package service

import (
	"errors"

	"github.com/davidqnz/glsl-playground/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProgramService 封装着色器程序的增删改查。读操作不做权限检查，
// 写操作只允许程序的拥有者执行。
type ProgramService struct {
	db *gorm.DB
}

func NewProgramService(db *gorm.DB) *ProgramService {
	return &ProgramService{db: db}
}

// ProgramAttrs 是创建程序时客户端可指定的字段，id 和 userId 由服务端决定。
type ProgramAttrs struct {
	Title          string
	VertexSource   string
	FragmentSource string
	DidCompile     bool
}

// ProgramPatch 表示部分更新：nil 字段保持原值。
type ProgramPatch struct {
	Title          *string
	VertexSource   *string
	FragmentSource *string
	DidCompile     *bool
}

// GetByID 按 id 查询程序，任何人可读。
func (s *ProgramService) GetByID(id string) (*models.Program, error) {
	var program models.Program
	if err := s.db.Where("id = ?", id).First(&program).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, err
	}
	return &program, nil
}

// ListByUser 返回指定用户拥有的全部程序。
func (s *ProgramService) ListByUser(userID string) ([]models.Program, error) {
	var programs []models.Program
	if err := s.db.Where("user_id = ?", userID).Order("created_at desc").Find(&programs).Error; err != nil {
		return nil, err
	}
	return programs, nil
}

// Create 以调用者为拥有者新建程序，id 由服务端生成，
// 请求里带的任何 id/userId 都不起作用。
func (s *ProgramService) Create(ownerID string, attrs ProgramAttrs) (*models.Program, error) {
	program := models.Program{
		ID:             uuid.NewString(),
		UserID:         &ownerID,
		Title:          attrs.Title,
		VertexSource:   attrs.VertexSource,
		FragmentSource: attrs.FragmentSource,
		DidCompile:     attrs.DidCompile,
	}
	if err := s.db.Create(&program).Error; err != nil {
		return nil, err
	}
	return &program, nil
}

// Update 对程序做部分更新。存在性先于所有权检查：id 不存在返回
// ErrProgramNotFound，调用者不是拥有者返回 ErrNotOwner。整个
// 读取-校验-写入序列包在一个事务里，避免并发修改丢失更新。
func (s *ProgramService) Update(id, callerID string, patch ProgramPatch) (*models.Program, error) {
	var program models.Program
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&program).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProgramNotFound
			}
			return err
		}
		if program.UserID == nil || *program.UserID != callerID {
			return ErrNotOwner
		}
		updates := map[string]interface{}{"user_id": callerID}
		if patch.Title != nil {
			updates["title"] = *patch.Title
		}
		if patch.VertexSource != nil {
			updates["vertex_source"] = *patch.VertexSource
		}
		if patch.FragmentSource != nil {
			updates["fragment_source"] = *patch.FragmentSource
		}
		if patch.DidCompile != nil {
			updates["did_compile"] = *patch.DidCompile
		}
		if err := tx.Model(&program).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).First(&program).Error
	})
	if err != nil {
		return nil, err
	}
	return &program, nil
}

// Delete 删除程序并返回被删除的记录，检查顺序与 Update 一致。
func (s *ProgramService) Delete(id, callerID string) (*models.Program, error) {
	var program models.Program
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&program).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProgramNotFound
			}
			return err
		}
		if program.UserID == nil || *program.UserID != callerID {
			return ErrNotOwner
		}
		return tx.Delete(&models.Program{}, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &program, nil
}

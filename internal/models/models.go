package models

import "time"

type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:254;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// Program 是用户保存的一组顶点/片元着色器源码。UserID 为空表示作者账号已注销，
// 程序本身保留并继续对外可读。
type Program struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	UserID         *string   `gorm:"size:36;index" json:"userId"`
	User           *User     `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	Title          string    `gorm:"size:256;not null;default:''" json:"title"`
	VertexSource   string    `gorm:"type:text" json:"vertexSource"`
	FragmentSource string    `gorm:"type:text" json:"fragmentSource"`
	DidCompile     bool      `json:"didCompile"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"createdAt"`
	ModifiedAt     time.Time `gorm:"autoUpdateTime" json:"modifiedAt"`
}

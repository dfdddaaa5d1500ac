package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User is the identity record. Email doubles as the username; uniqueness is
// checked case-insensitively before insert, the unique index is the backstop.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	FirstName    string    `gorm:"column:first_name;size:55;not null"`
	LastName     string    `gorm:"column:last_name;size:55;not null"`
	Username     string    `gorm:"column:username;not null"`
	Email        string    `gorm:"column:email;uniqueIndex;not null"`
	Phone        string    `gorm:"column:phone"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	Role         string    `gorm:"column:role;not null;default:User"`
	IsActive     bool      `gorm:"column:is_active;not null;default:true"`
	RefreshToken string    `gorm:"column:refresh_token"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Profile *UserProfile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// DisplayName is the name claim carried in access tokens.
func (u *User) DisplayName() string {
	return u.FirstName
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// UserProfile is the optional-until-first-write sub-record. At most one per
// user; created lazily by the update workflow when absent.
type UserProfile struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID        uuid.UUID       `gorm:"column:user_id;type:uuid;uniqueIndex;not null"`
	Gender        *string         `gorm:"column:gender"`
	DateOfBirth   *datatypes.Date `gorm:"column:date_of_birth"`
	Address       string          `gorm:"column:address"`
	StateOfOrigin string          `gorm:"column:state_of_origin"`
	Nationality   string          `gorm:"column:nationality"`
	ProfilePic    string          `gorm:"column:profile_pic"`
	FacebookLink  string          `gorm:"column:facebook_link"`
	TwitterLink   string          `gorm:"column:twitter_link"`
	LinkedinLink  string          `gorm:"column:linkedin_link"`
	InstagramLink string          `gorm:"column:instagram_link"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (p *UserProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Role is a named permission group, seeded once at bootstrap.
type Role struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r *Role) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// UserRole records role membership; rows are managed by the identity store.
type UserRole struct {
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	RoleID    uuid.UUID `gorm:"column:role_id;type:uuid;primaryKey"`
	CreatedAt time.Time
}

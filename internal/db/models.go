package db

import (
	"time"
)

// Table names as seen by the gateway. Insert events are published per table.
const (
	TableUsers    = "users"
	TableLikes    = "likes"
	TableDislikes = "dislikes"
	TableMessages = "messages"
)

// UserColumns is the public projection of a user row. password_hash never
// leaves the account package.
var UserColumns = []string{"id", "username", "email", "gender", "created_at"}

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Opposite returns the gender a user of g is matched against.
func (g Gender) Opposite() Gender {
	if g == GenderMale {
		return GenderFemale
	}
	return GenderMale
}

func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// User table
type User struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Email        string    `gorm:"uniqueIndex;size:128;not null" json:"email"`
	Gender       Gender    `gorm:"size:16;not null;index" json:"gender"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Judgment is a directed like/dislike edge from UserID to TargetUserID.
//
// Composite PK: (UserID, TargetUserID)
//   - Rejects a repeated judgment within one table. Across likes and
//     dislikes the match engine checks the other table in the same
//     transaction.
//
// Indexes:
//   - idx_<table>_target_user(target_user_id, user_id)
//     Serves "who liked me" lookups for the match resolver. Named per table
//     since both tables embed this struct.
type Judgment struct {
	UserID       uint64    `gorm:"primaryKey;autoIncrement:false;index:,composite:target_user,priority:2" json:"user_id"`
	TargetUserID uint64    `gorm:"primaryKey;autoIncrement:false;index:,composite:target_user,priority:1" json:"target_user_id"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Like is a positive judgment.
type Like struct {
	Judgment
}

func (Like) TableName() string { return TableLikes }

// Dislike is a negative judgment.
type Dislike struct {
	Judgment
}

func (Dislike) TableName() string { return TableDislikes }

// Message is immutable once created. ID is generated by the sender so an
// optimistically appended copy and the store echo share one identity.
//
// Indexes:
//   - idx_pair_created(sender_id, receiver_id, created_at)
//     Serves conversation history in either direction, ascending by time.
type Message struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	SenderID   uint64    `gorm:"not null;index:idx_pair_created,priority:1" json:"sender_id"`
	ReceiverID uint64    `gorm:"not null;index:idx_pair_created,priority:2" json:"receiver_id"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index:idx_pair_created,priority:3" json:"created_at"`
}

func (Message) TableName() string { return TableMessages }

// Models lists everything AutoMigrate manages.
func Models() []any {
	return []any{&User{}, &Like{}, &Dislike{}, &Message{}}
}

// Package seed fills a development database with demo users, judgments and
// conversations. Everything goes through the same account, match and
// conversation code the services use.
package seed

import (
	"context"
	"fmt"
	"strings"

	"github.com/jaswdr/faker"
	"gorm.io/gorm"

	"github.com/oggyb/muzz-chat/internal/account"
	"github.com/oggyb/muzz-chat/internal/app"
	"github.com/oggyb/muzz-chat/internal/conversation"
	"github.com/oggyb/muzz-chat/internal/db"
	"github.com/oggyb/muzz-chat/internal/match"
)

// DemoPassword is the password of every seeded user.
const DemoPassword = "password"

type Options struct {
	Users int
	// LikePercent is the chance, 0-100, that a seeded judgment is a like.
	LikePercent int
	// MessagesPerMatch is how many messages each mutual match exchanges.
	MessagesPerMatch int
}

func DefaultOptions() Options {
	return Options{Users: 20, LikePercent: 70, MessagesPerMatch: 3}
}

// Run wipes all tables and seeds them again.
//
// Behavior:
//  1. Clears messages, likes, dislikes and users.
//  2. Signs up opt.Users users, half male and half female.
//  3. Walks every user's candidate pass once, liking with opt.LikePercent.
//  4. Posts opt.MessagesPerMatch messages between every mutual match.
func Run(ctx context.Context, appCtx *app.AppContext, opt Options) error {
	log := appCtx.Logger.With("subsystem", "seed")
	fake := faker.New()

	if err := reset(appCtx.DB); err != nil {
		return err
	}

	accounts := account.New(appCtx.Gateway, appCtx.Hasher, log)
	users := make([]db.User, 0, opt.Users)
	for i := 1; i <= opt.Users; i++ {
		gender := db.GenderMale
		if i > opt.Users/2 {
			gender = db.GenderFemale
		}
		name := fmt.Sprintf("%s%d", letters(fake.Person().FirstName()), i)
		u, err := accounts.SignUp(ctx, account.SignUpInput{
			Username: name,
			Email:    name + "@example.com",
			Password: DemoPassword,
			Gender:   gender,
		})
		if err != nil {
			return fmt.Errorf("seed user %s: %w", name, err)
		}
		users = append(users, u)
	}
	log.Info("seeded users", "count", len(users))

	engine := match.NewEngine(appCtx.Gateway, log)
	judgments := 0
	for _, u := range users {
		pass, err := engine.Start(ctx, u)
		if err != nil {
			return fmt.Errorf("start pass for %d: %w", u.ID, err)
		}
		for pass.Remaining() > 0 {
			liked := fake.IntBetween(0, 99) < opt.LikePercent
			if _, err := pass.Judge(ctx, liked); err != nil {
				return fmt.Errorf("judge for %d: %w", u.ID, err)
			}
			judgments++
		}
	}
	log.Info("seeded judgments", "count", judgments)

	resolver := match.NewResolver(appCtx.Gateway)
	messages := 0
	for _, u := range users {
		matches, err := resolver.Matches(ctx, u)
		if err != nil {
			return fmt.Errorf("matches for %d: %w", u.ID, err)
		}
		for _, m := range matches {
			// each pair once
			if m.ID < u.ID {
				continue
			}
			for i := 0; i < opt.MessagesPerMatch; i++ {
				from, to := u.ID, m.ID
				if i%2 == 1 {
					from, to = to, from
				}
				if _, err := conversation.Post(ctx, appCtx.Gateway, from, to, fake.Lorem().Sentence(6)); err != nil {
					return fmt.Errorf("seed message: %w", err)
				}
				messages++
			}
		}
	}
	log.Info("seeded messages", "count", messages)
	return nil
}

func reset(database *gorm.DB) error {
	for _, table := range []string{db.TableMessages, db.TableLikes, db.TableDislikes, db.TableUsers} {
		if err := database.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	// Reset auto-increment sequences
	switch database.Dialector.Name() {
	case "mysql":
		database.Exec("ALTER TABLE users AUTO_INCREMENT = 1")
	case "sqlite":
		database.Exec("DELETE FROM sqlite_sequence WHERE name = 'users'")
	}
	return nil
}

// IsSeeded reports whether the users table already has rows.
func IsSeeded(ctx context.Context, database *gorm.DB) (bool, error) {
	var n int64
	if err := database.WithContext(ctx).Model(&db.User{}).Count(&n).Error; err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return n > 0, nil
}

// letters keeps the lowercase ASCII letters of s, for usernames and emails.
func letters(s string) string {
	out := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return -1
		}
	}, s)
	if len(out) < 3 {
		out += "user"
	}
	return out
}

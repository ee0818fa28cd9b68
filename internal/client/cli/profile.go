package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/example/movequote/internal/client/models"
	"github.com/google/uuid"
)

func (a *App) userUUID() (uuid.UUID, error) {
	return uuid.Parse(a.sessions.UserID())
}

// Profile prints the signed-in user's profile.
func (a *App) Profile(ctx context.Context) error {
	uid, err := a.userUUID()
	if err != nil {
		printlnFn("You need to log in first.")
		return nil
	}

	p, err := a.profiles.Get(ctx, uid, "")
	if err != nil {
		return err
	}

	printlnFn(fmt.Sprintf("Name:              %s", p.FullName))
	printlnFn(fmt.Sprintf("Email:             %s", p.Email))
	printlnFn(fmt.Sprintf("Security question: %s", p.SecurityQuestion))
	return nil
}

// UpdateProfile edits the profile's name and email. Empty input keeps the
// current value.
func (a *App) UpdateProfile(ctx context.Context) error {
	uid, err := a.userUUID()
	if err != nil {
		printlnFn("You need to log in first.")
		return nil
	}

	p, err := a.profiles.Get(ctx, uid, "")
	if err != nil {
		return err
	}

	fullName, err := getSimpleText(a.reader, fmt.Sprintf("Full name [%s]", p.FullName), os.Stdout)
	if err != nil {
		return err
	}
	if fullName == "" {
		fullName = p.FullName
	}
	email, err := getSimpleText(a.reader, fmt.Sprintf("Email [%s]", p.Email), os.Stdout)
	if err != nil {
		return err
	}
	if email == "" {
		email = p.Email
	}

	if err := a.profiles.Update(ctx, uid, fullName, email); err != nil {
		return err
	}
	printlnFn("Profile updated.")
	return nil
}

// Question replaces the security question and answer used for password
// recovery.
func (a *App) Question(ctx context.Context) error {
	uid, err := a.userUUID()
	if err != nil {
		printlnFn("You need to log in first.")
		return nil
	}

	question, err := getChoice(a.reader, "Pick a security question:", models.SecurityQuestions, os.Stdout)
	if err != nil {
		return err
	}
	answer, err := getSimpleText(a.reader, "Your answer", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.profiles.UpdateSecurityQuestion(ctx, uid, question, answer); err != nil {
		return err
	}
	printlnFn("Security question updated.")
	return nil
}

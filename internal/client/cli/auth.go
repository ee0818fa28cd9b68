package cli

import (
	"context"
	"errors"
	"os"

	"github.com/example/movequote/internal/client/models"
	"github.com/example/movequote/internal/client/session"
	"github.com/example/movequote/internal/common"
)

// getSimpleText, getPassword and getChoice are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword
var getChoice = GetChoice

// Register prompts for the account fields, including the security question
// used for password recovery, and creates the account. The user is signed
// in on success.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword("Enter password (8+ characters)", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	fullName, err := getSimpleText(a.reader, "Enter full name", os.Stdout)
	if err != nil {
		return err
	}
	question, err := getChoice(a.reader, "Pick a security question:", models.SecurityQuestions, os.Stdout)
	if err != nil {
		return err
	}
	answer, err := getSimpleText(a.reader, "Your answer", os.Stdout)
	if err != nil {
		return err
	}

	_, err = a.sessions.SignUp(ctx, session.SignUpParams{
		Email:            email,
		Password:         string(password),
		FullName:         fullName,
		SecurityQuestion: question,
		SecurityAnswer:   answer,
	})
	if err != nil {
		var verr *common.ValidationError
		switch {
		case errors.As(err, &verr):
			printlnFn("Invalid " + verr.Field + ": " + verr.Reason)
		case errors.Is(err, common.ErrRateLimited):
			printlnFn("Too many attempts, please wait a few minutes.")
		}
		return err
	}

	printlnFn("Account created, you are signed in.")
	return nil
}

// Login prompts for credentials and signs in.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword("Enter password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	_, err = a.sessions.SignIn(ctx, email, string(password))
	if err != nil {
		switch {
		case errors.Is(err, common.ErrInvalidCredentials):
			printlnFn("Wrong email or password.")
		case errors.Is(err, common.ErrRateLimited):
			printlnFn("Too many attempts, please wait a few minutes.")
		}
		return err
	}

	printlnFn("Signed in.")
	return nil
}

// Logout signs out remotely, clears the persisted session, and drops the
// locally cached search results.
func (a *App) Logout(ctx context.Context) error {
	a.sessions.SignOut(ctx)

	if err := a.repos.Searches.Clear(ctx); err != nil {
		a.log.Warn(ctx, "failed to clear cached searches", "error", err)
	}

	a.lastQueryID = 0
	a.lastInquiryIDs = nil
	a.lastInquiries = nil
	a.companyNames = make(map[int64]string)

	printlnFn("Signed out.")
	return nil
}

// Forgot walks the security-question recovery flow: look up the question
// for the email, verify the answer, and set a new password.
func (a *App) Forgot(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter your account email", os.Stdout)
	if err != nil {
		return err
	}

	question, err := a.sessions.GetSecurityQuestion(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			printlnFn("No security question is set for that account.")
		}
		return err
	}
	printlnFn(question)

	answer, err := getSimpleText(a.reader, "Your answer", os.Stdout)
	if err != nil {
		return err
	}
	newPassword, err := getPassword("New password (8+ characters)", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(newPassword)

	err = a.sessions.ResetPasswordViaSecurityAnswer(ctx, email, answer, string(newPassword))
	if err != nil {
		var verr *common.ValidationError
		switch {
		case errors.As(err, &verr):
			printlnFn("Invalid " + verr.Field + ": " + verr.Reason)
		case errors.Is(err, common.ErrInvalidCredentials):
			printlnFn("That answer does not match.")
		}
		return err
	}

	printlnFn("Password updated, you can log in now.")
	return nil
}

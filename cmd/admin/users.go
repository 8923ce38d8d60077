package main

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"jobportal/internal/auth"
	"jobportal/internal/database"
)

type createUserInput struct {
	Email       string
	Fullname    string
	PhoneNumber string
	Role        string
}

func newCreateUserCmd(open openFunc) *cobra.Command {
	var in createUserInput
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create an account with a random initial password",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := open()
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return err
			}
			user, password, err := createUser(db, in)
			if err != nil {
				return err
			}
			printCreatedUser(cmd.OutOrStdout(), user, password)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "登录邮箱（必填）")
	cmd.Flags().StringVar(&in.Fullname, "fullname", "", "姓名（必填）")
	cmd.Flags().StringVar(&in.PhoneNumber, "phone", "", "手机号（可选）")
	cmd.Flags().StringVar(&in.Role, "role", database.RoleRecruiter, "角色：student 或 recruiter")
	return cmd
}

func createUser(db *gorm.DB, in createUserInput) (database.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	fullname := strings.TrimSpace(in.Fullname)
	role := strings.TrimSpace(in.Role)
	if email == "" {
		return database.User{}, "", errors.New("missing required flag: --email")
	}
	if fullname == "" {
		return database.User{}, "", errors.New("missing required flag: --fullname")
	}
	if role != database.RoleStudent && role != database.RoleRecruiter {
		return database.User{}, "", fmt.Errorf("unknown role %q", role)
	}

	var existing database.User
	switch err := db.Where("email = ?", email).First(&existing).Error; {
	case err == nil:
		return database.User{}, "", fmt.Errorf("user %q already exists", email)
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return database.User{}, "", fmt.Errorf("query user: %w", err)
	}

	password, err := generateRandomPassword(18)
	if err != nil {
		return database.User{}, "", err
	}
	hashed, err := auth.HashPassword(password)
	if err != nil {
		return database.User{}, "", err
	}

	user := database.User{
		Fullname:     fullname,
		Email:        email,
		PhoneNumber:  strings.TrimSpace(in.PhoneNumber),
		PasswordHash: hashed,
		Role:         role,
	}
	if err := db.Create(&user).Error; err != nil {
		return database.User{}, "", fmt.Errorf("create user: %w", err)
	}
	return user, password, nil
}

func printCreatedUser(w io.Writer, user database.User, password string) {
	fmt.Fprintln(w, titleStyle.Render("Account created"))
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Email:"), user.Email)
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Role:"), user.Role)
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Initial password:"), password)
	fmt.Fprintln(w, hintStyle.Render("该密码仅显示一次，请尽快登录并修改。"))
}

func generateRandomPassword(bytesLen int) (string, error) {
	if bytesLen <= 0 {
		bytesLen = 18
	}
	buf := make([]byte, bytesLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

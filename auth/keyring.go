// Package auth stores the access token used to sign download links in the system keyring.
package auth

import (
	"errors"

	"github.com/dashreel/dashreel/constant"
	"github.com/dashreel/dashreel/key"
	"github.com/spf13/viper"
	"github.com/zalando/go-keyring"
)

const user = "access-token"

var service = constant.Dashreel

func SetToken(token string) error {
	return keyring.Set(service, user, token)
}

func GetToken() (string, error) {
	return keyring.Get(service, user)
}

func DeleteToken() error {
	return keyring.Delete(service, user)
}

// Token returns the keyring token, falling back to resolve.token. A missing token is not an error.
func Token() (string, error) {
	token, err := GetToken()
	switch {
	case err == nil && token != "":
		return token, nil
	case err == nil, errors.Is(err, keyring.ErrNotFound):
		return viper.GetString(key.ResolveToken), nil
	default:
		return "", err
	}
}

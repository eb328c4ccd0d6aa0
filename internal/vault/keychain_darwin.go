//go:build darwin && cgo

package vault

import (
	"context"

	kc "github.com/keybase/go-keychain"

	"github.com/docker/npm-token-setup/internal/run"
)

type keychainStore struct{}

// Default returns the native Keychain store. The runner is unused here; the
// non-cgo build falls back to the security(1) binary and needs it.
func Default(_ run.Runner) Store {
	return keychainStore{}
}

func getItem(account string) kc.Item {
	item := kc.NewItem()
	item.SetSecClass(kc.SecClassGenericPassword)
	item.SetService(ServiceName)
	item.SetMatchLimit(kc.MatchLimitOne)
	item.SetAccessible(kc.AccessibleAfterFirstUnlock)
	item.SetReturnData(true)
	item.SetReturnAttributes(true)
	item.SetLabel(ServiceName)
	item.SetAccount(account)
	return item
}

func (keychainStore) Get(ctx context.Context, account string) (string, error) {
	results, err := kc.QueryItem(getItem(account))
	if err != nil {
		return "", mapError(err)
	}
	if len(results) == 0 {
		return "", ErrCredentialsNotFound
	}
	return string(results[0].Data), nil
}

func (keychainStore) Set(ctx context.Context, account, secret string) error {
	// Delete first to get upsert semantics; AddItem fails on duplicates.
	_ = kc.DeleteItem(getItem(account))

	item := getItem(account)
	item.SetData([]byte(secret))
	return mapError(kc.AddItem(item))
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch err.Error() {
	case kc.ErrorInteractionNotAllowed.Error():
		return ErrInteractionNotAllowed
	case kc.ErrorItemNotFound.Error():
		return ErrCredentialsNotFound
	case kc.ErrorAuthFailed.Error():
		return ErrAuthFailed
	}
	return err
}

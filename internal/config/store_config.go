package config

type StoreConfig interface {
	GetCredentialStorePath() string
	GetCredentialStoreSecret() string
}

type Store struct{}

var _ StoreConfig = Store{}

// GetCredentialStorePath is empty when the local fallback store is disabled
func (Store) GetCredentialStorePath() string {
	return GetEnv("CREDENTIAL_STORE_PATH", "")
}

func (Store) GetCredentialStoreSecret() string {
	return GetEnv("CREDENTIAL_STORE_SECRET", "")
}

package ports

import "github.com/indelible-labs/indelibled/internal/core/domain"

type RepoManager interface {
	Collection() domain.CollectionRepository
	Assets() domain.AssetRepository
	Tokens() domain.TokenRepository
	Nonces() domain.NonceRepository
	Close()
}

package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name ScoreboardFetcher --dir ../usecase --output usecase --outpkg usecasemock --filename scoreboard_fetcher_mock.go

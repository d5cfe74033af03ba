package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name FragmentSource --dir ../domain/source --output domain/source --outpkg sourcemock --filename fragment_source_mock.go

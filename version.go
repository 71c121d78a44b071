package easel

// Version is the library version. Overridable at build time:
//
//	go build -ldflags "-X github.com/aretw0/easel.Version=v1.2.3"
var Version = "0.1.0"

//go:build mage

package main

import (
	"path/filepath"
	"sync"

	"emperror.dev/errors"
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

var Default = All

func All() {
	mg.SerialDeps(Test, Build)
}

var binaries = []string{
	"nestgen",
	"protoc-gen-nestjs",
}

func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Golden rewrites the expected generator output in testdata.
func Golden() error {
	return sh.RunV("go", "test", "./pkg/plugins/nestjs", "-run", "TestGreeterGolden", "-update")
}

func Build() (buildErr error) {
	var mu sync.Mutex
	wg := sync.WaitGroup{}
	for _, name := range binaries {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			err := sh.RunWith(map[string]string{
				"CGO_ENABLED": "0",
			}, "go", "build", "-ldflags", `-w -s`, "-o", filepath.Join("bin", name), "./cmd/"+name)
			if err != nil {
				mu.Lock()
				buildErr = errors.Append(buildErr, errors.WithDetails(err, "binary", name))
				mu.Unlock()
			}
		}(name)
	}
	wg.Wait()
	return
}

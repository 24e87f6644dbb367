// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package shader

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/go-shade/internal/assembler"
	"github.com/petar-djukic/go-shade/internal/classfile"
	"github.com/petar-djukic/go-shade/internal/classfile/classfiletest"
	"github.com/petar-djukic/go-shade/internal/policy"
	"github.com/petar-djukic/go-shade/internal/publish"
	"github.com/petar-djukic/go-shade/internal/store"
	"github.com/petar-djukic/go-shade/pkg/types"
)

// fixture writes two artifacts: an API jar and a library class directory.
func fixture(t *testing.T) (inputs []string, deps Deps) {
	t.Helper()
	dir := t.TempDir()

	api := filepath.Join(dir, "api.jar")
	classfiletest.WriteJar(t, api, map[string][]byte{
		"META-INF/MANIFEST.MF": []byte("Manifest-Version: 1.0\n"),
		"com/acme/Api.class": classfiletest.New("com/acme/Api").
			Field("util", "Lorg/dep/Util;").
			Method("ghost", "()Lorg/dep/Ghost;").
			Bytes(),
	})

	lib := filepath.Join(dir, "lib")
	classfiletest.WriteDir(t, lib, map[string][]byte{
		"org/dep/Util.class":   classfiletest.New("org/dep/Util").Implements("org/dep/Base").Bytes(),
		"org/dep/Base.class":   classfiletest.New("org/dep/Base").Bytes(),
		"org/dep/Unused.class": classfiletest.New("org/dep/Unused").Bytes(),
	})

	receipt := filepath.Join(dir, "build-receipt.properties")
	require.NoError(t, os.WriteFile(receipt, []byte("versionNumber=1.0\n"), 0o644))

	deps = Deps{
		Policy:      policy.RenamePolicy{ShadowPackage: "com.acme.shaded", KeepPackages: []string{"com.acme.Api"}},
		WorkDir:     filepath.Join(dir, "work"),
		Format:      store.CBOR,
		Workers:     2,
		Output:      filepath.Join(dir, "shaded.jar"),
		ReceiptFile: receipt,
		ReceiptPath: "com/acme/build-receipt.properties",
		ReportDir:   filepath.Join(dir, "report"),
	}
	return []string{api, lib}, deps
}

func TestRunner_Run(t *testing.T) {
	inputs, deps := fixture(t)
	var summary bytes.Buffer
	deps.Summary = &summary
	backups := filepath.Join(t.TempDir(), "backups")
	deps.Publisher = publish.DirPublisher{Dir: backups}

	runner, err := NewRunner(deps)
	require.NoError(t, err)

	result, err := runner.Run(context.Background(), inputs)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(deps.WorkDir, "001-api"),
		filepath.Join(deps.WorkDir, "002-lib"),
	}, result.IntermediateDirs)
	assert.FileExists(t, filepath.Join(deps.WorkDir, "002-lib", "classTree.cbor"))

	names, contents := classfiletest.ReadJar(t, deps.Output)
	assert.Equal(t, []string{
		assembler.ManifestPath,
		"com/acme/build-receipt.properties",
		"com/acme/Api.class",
		"com/acme/shaded/org/dep/Base.class",
		"com/acme/shaded/org/dep/Util.class",
	}, names)

	util, err := classfile.Parse(contents["com/acme/shaded/org/dep/Util.class"])
	require.NoError(t, err)
	assert.Equal(t, "com/acme/shaded/org/dep/Util", util.Name())
	assert.Equal(t, []string{"com/acme/shaded/org/dep/Base"}, util.InterfaceNames())

	assert.Equal(t, []types.MissingEntry{
		{Name: "com/acme/shaded/org/dep/Ghost", Kind: types.Unresolved, Via: "com/acme/Api"},
	}, result.Missing)
	assert.Equal(t, []string{"java/lang/Object"}, result.Provided)
	assert.Contains(t, summary.String(), "com/acme/shaded/org/dep/Ghost (unresolved; reachable from com/acme/Api)")

	assert.FileExists(t, filepath.Join(deps.ReportDir, "report.json"))
	pub := publish.Publication{Digest: result.Digest}
	assert.FileExists(t, filepath.Join(backups, pub.Prefix()+".jar"))
	assert.FileExists(t, filepath.Join(backups, pub.Prefix()+"-report", "classTree.json"))
}

func TestRunner_IgnoredClassesReachedTransitively(t *testing.T) {
	_, deps := fixture(t)
	lib := filepath.Join(t.TempDir(), "lib")
	classfiletest.WriteDir(t, lib, map[string][]byte{
		"com/acme/Api.class":              classfiletest.New("com/acme/Api").Field("f", "Lorg/dep/testing/Fixture;").Bytes(),
		"org/dep/testing/Fixture.class":   classfiletest.New("org/dep/testing/Fixture").Bytes(),
		"org/dep/testing/Unreached.class": classfiletest.New("org/dep/testing/Unreached").Bytes(),
	})
	deps.Policy.IgnoredPackages = []string{"org.dep.testing"}

	t.Run("retained by reachability by default", func(t *testing.T) {
		runner, err := NewRunner(deps)
		require.NoError(t, err)
		result, err := runner.Run(context.Background(), []string{lib})
		require.NoError(t, err)

		names, _ := classfiletest.ReadJar(t, deps.Output)
		assert.Contains(t, names, "com/acme/shaded/org/dep/testing/Fixture.class")
		assert.NotContains(t, names, "com/acme/shaded/org/dep/testing/Unreached.class")
		assert.Equal(t, []string{"com/acme/Api"}, result.Report.EntryPoints)
		assert.Empty(t, result.Missing)
	})

	t.Run("dropped and reported when configured", func(t *testing.T) {
		deps := deps
		deps.Policy.DropIgnored = true
		runner, err := NewRunner(deps)
		require.NoError(t, err)
		result, err := runner.Run(context.Background(), []string{lib})
		require.NoError(t, err)

		names, _ := classfiletest.ReadJar(t, deps.Output)
		assert.NotContains(t, names, "com/acme/shaded/org/dep/testing/Fixture.class")
		assert.Equal(t, []string{"com/acme/Api"}, result.Report.EntryPoints)
		assert.Equal(t, []types.MissingEntry{
			{Name: "com/acme/shaded/org/dep/testing/Fixture", Kind: types.Unresolved, Via: "com/acme/Api"},
		}, result.Missing)
	})
}

func TestRunner_AnalyzeThenAssembleMatchesRun(t *testing.T) {
	inputs, deps := fixture(t)
	runner, err := NewRunner(deps)
	require.NoError(t, err)

	dirs, err := runner.Analyze(context.Background(), inputs)
	require.NoError(t, err)
	staged, err := runner.Assemble(context.Background(), dirs)
	require.NoError(t, err)
	stagedBytes, err := os.ReadFile(deps.Output)
	require.NoError(t, err)

	result, err := runner.Run(context.Background(), inputs)
	require.NoError(t, err)
	runBytes, err := os.ReadFile(deps.Output)
	require.NoError(t, err)

	assert.Equal(t, stagedBytes, runBytes)
	assert.Equal(t, staged.Digest, result.Digest)
}

func TestRunner_MalformedInputFails(t *testing.T) {
	inputs, deps := fixture(t)
	bad := filepath.Join(t.TempDir(), "bad.jar")
	classfiletest.WriteJar(t, bad, map[string][]byte{"Bad.class": []byte("nope")})

	runner, err := NewRunner(deps)
	require.NoError(t, err)

	_, err = runner.Run(context.Background(), append(inputs, bad))
	assert.ErrorIs(t, err, classfile.ErrMalformed)
	assert.NoFileExists(t, deps.Output)
}

func TestRunner_OutputWriteFailure(t *testing.T) {
	inputs, deps := fixture(t)
	deps.Output = filepath.Join(t.TempDir(), "missing", "shaded.jar")

	runner, err := NewRunner(deps)
	require.NoError(t, err)

	_, err = runner.Run(context.Background(), inputs)
	assert.ErrorIs(t, err, assembler.ErrOutputWrite)
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, publish.Publication) error {
	return errors.New("bucket unavailable")
}

func TestRunner_PublishFailureKeepsArchive(t *testing.T) {
	inputs, deps := fixture(t)
	deps.Publisher = failingPublisher{}

	runner, err := NewRunner(deps)
	require.NoError(t, err)

	result, err := runner.Run(context.Background(), inputs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket unavailable")
	require.NotNil(t, result)
	assert.FileExists(t, result.Archive)
}

func TestRunner_Errors(t *testing.T) {
	_, err := NewRunner(Deps{})
	assert.ErrorIs(t, err, policy.ErrInvalidPolicy)

	_, deps := fixture(t)
	runner, err := NewRunner(deps)
	require.NoError(t, err)

	_, err = runner.Analyze(context.Background(), nil)
	assert.Error(t, err)

	_, err = runner.Assemble(context.Background(), []string{t.TempDir()})
	assert.ErrorIs(t, err, store.ErrNotIntermediate)
}

func TestArtifactName(t *testing.T) {
	assert.Equal(t, "guava-33.0", artifactName("/libs/guava-33.0.jar"))
	assert.Equal(t, "classes", artifactName("build/classes/"))
	assert.Equal(t, "lib.v2", artifactName("lib.v2"))
}

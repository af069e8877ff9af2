// Copyright (c) 2026, Aepok Corporation.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package container

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	cnserrors "github.com/aepokcorporation/gpu-setup-tool/pkg/errors"
	"github.com/aepokcorporation/gpu-setup-tool/pkg/serializer"
)

// ChecksumFileName is the name of the checksum file in a bundle directory.
const ChecksumFileName = "checksums.txt"

// GenerateChecksums writes the SHA256 of each file, relative to dir, into
// dir/checksums.txt and returns its path.
func GenerateChecksums(ctx context.Context, dir string, files []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("context cancelled: %w", err)
	}

	var buf bytes.Buffer
	for _, file := range files {
		sum, err := fileSHA256(file)
		if err != nil {
			return "", cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to checksum "+file, err)
		}
		rel, err := filepath.Rel(dir, file)
		if err != nil {
			rel = file
		}
		fmt.Fprintf(&buf, "%s  %s\n", sum, rel)
	}

	path := filepath.Join(dir, ChecksumFileName)
	if err := serializer.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return "", cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to write checksums", err)
	}
	slog.Debug("checksums generated", "file_count", len(files), "path", path)
	return path, nil
}

// VerifyChecksums checks every entry of dir/checksums.txt against the file
// on disk.
func VerifyChecksums(dir string) error {
	data, err := os.ReadFile(filepath.Join(dir, ChecksumFileName))
	if err != nil {
		return cnserrors.Wrap(cnserrors.ErrCodeNotFound, "no checksums in "+dir, err)
	}

	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		want, rel, ok := strings.Cut(line, "  ")
		if !ok {
			return cnserrors.New(cnserrors.ErrCodeInvalidRequest, "malformed checksum line: "+line)
		}
		got, err := fileSHA256(filepath.Join(dir, rel))
		if err != nil {
			return cnserrors.Wrap(cnserrors.ErrCodeNotFound, "missing bundle file "+rel, err)
		}
		if got != want {
			return cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest, "checksum mismatch for "+rel,
				map[string]any{"want": want, "got": got})
		}
	}
	return sc.Err()
}

func fileSHA256(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

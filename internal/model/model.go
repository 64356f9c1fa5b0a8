// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the Model, the root container for everything loaded from
// a user's .hcl files.
//
// Why have a Model?
//
// Users split metadata across files and directories: types in one place,
// instances in another. Loading aggregates all of it so type inheritance and
// instance references can span files.
package model

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/ambigrid/internal/ctxlog"
	"github.com/specialistvlad/ambigrid/internal/fsutil"
	"github.com/specialistvlad/ambigrid/internal/registry"
)

// Model is the loaded metadata.
type Model struct {
	Types     []*registry.TypeInfo
	Instances []*Instance
}

// hclModelFile is the top-level structure of a metadata file.
type hclModelFile struct {
	Types     []*hclType     `hcl:"type,block"`
	Instances []*hclInstance `hcl:"instance,block"`
}

// ParseFile decodes one parsed HCL file into m.
func (m *Model) ParseFile(ctx context.Context, file *hcl.File, filePath string) hcl.Diagnostics {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Parsing metadata file.", "file_path", filePath)

	var parsed hclModelFile
	diags := gohcl.DecodeBody(file.Body, nil, &parsed)
	if diags.HasErrors() {
		return diags
	}

	for _, t := range parsed.Types {
		info, typeDiags := newTypeFromHCL(t)
		diags = append(diags, typeDiags...)
		if info != nil {
			m.Types = append(m.Types, info)
		}
	}
	for _, i := range parsed.Instances {
		inst, instDiags := newInstanceFromHCL(i, filePath)
		diags = append(diags, instDiags...)
		if inst != nil {
			m.Instances = append(m.Instances, inst)
		}
	}

	logger.Debug("Parsed metadata file.", "file_path", filePath, "types", len(parsed.Types), "instances", len(parsed.Instances))
	return diags
}

// LoadRecursively finds and parses every .hcl file under the given paths. A
// path may also name a single file.
func LoadRecursively(ctx context.Context, paths ...string) (*Model, error) {
	logger := ctxlog.FromContext(ctx)

	m := &Model{}
	parser := hclparse.NewParser()
	for _, root := range paths {
		logger.Debug("Loading metadata from path.", "path", root)

		files, err := fsutil.FindFilesByExtension(root, ".hcl")
		if err != nil {
			return nil, fmt.Errorf("failed to find metadata files in %s: %w", root, err)
		}
		if len(files) == 0 {
			logger.Warn("No .hcl metadata files found in path.", "path", root)
			continue
		}

		for _, file := range files {
			hclFile, diags := parser.ParseHCLFile(file)
			if diags.HasErrors() {
				return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
			}
			if diags := m.ParseFile(ctx, hclFile, file); diags.HasErrors() {
				return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
			}
		}
	}

	logger.Info("Metadata loaded.", "types", len(m.Types), "instances", len(m.Instances))
	return m, nil
}

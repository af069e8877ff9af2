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

// Package session keeps the ledger of what the current install session put
// on the machine: apt and pip packages in install order, and the pipeline
// steps that completed. Rollback drains it in reverse.
//
// The ledger is persisted after every mutation as a whole JSON document
// written through a temp file and rename:
//
//	{"apt_packages": [...], "pip_packages": [...], "steps_completed": [...]}
//
// Recording a package that is already present is a no-op, so the first
// install position is kept. Reset replaces the document with an empty one
// in a single write, so a crash never leaves packages without steps or the
// reverse.
package session

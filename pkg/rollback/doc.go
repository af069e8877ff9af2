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

// Package rollback undoes the packages recorded in the session ledger.
//
// Packages are uninstalled last-installed-first within each kind; pip
// packages go before apt packages because pip itself is an apt package.
// A failed uninstall is logged and skipped. Whatever happens, the rollback
// ends by resetting the ledger and clearing the checkpoint, so the next run
// starts from a clean slate. Rollback never returns an error.
//
//	eng := rollback.New(r, ledger, cp, rollback.WithLogger(diag.Logger()))
//	report := eng.Rollback(ctx, rollback.LevelAll)
package rollback

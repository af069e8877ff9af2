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

// Package framework is the registry of installable ML and quantum frameworks.
//
// Each Kind maps to a Spec describing how to install it with pip, which pip
// distributions that install leaves behind (for the session ledger), and the
// Python snippets used to validate and benchmark it. Callers dispatch through
// Lookup instead of branching on framework names.
package framework

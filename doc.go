package chainref

// Package chainref canonicalizes and validates per-chain reference data
// (accounts, assets, binaries, contracts, entities and pools):
//
// - A schema Registry with one compiled JSON Schema per record type
// - Key ordering and deterministic record sorting (OrderKeys/Sorter)
// - A Validator combining schema conformance and duplicate identity checks
// - A stable error model via Issues (JSON Pointer, code, message)
//
// Design policy:
// - Keep only public APIs in the root package; put file IO under internal/.
// - Place the CLI under cmd/chainref.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//  reg, err := chainref.NewRegistry()
//  sorted, err := chainref.SortPathBatches(batches)
//  grouped, err := chainref.GroupByType(batches)
//  report, err := chainref.NewValidator(reg).Validate(grouped)
//  if report.HasError { ... }
//

// Package sebi implements SEBI, the Stylus Execution Boundary Inspector: a
// deterministic, offline static analyzer for WebAssembly smart-contract
// artifacts.
//
// Given a WASM binary, SEBI classifies it as SAFE, RISK, or HIGH_RISK based
// on structural patterns that complicate static reasoning about resource
// and control-flow bounds: unbounded memory, runtime memory growth,
// indirect dispatch, loops, and oversized artifacts.
//
// # Pipeline
//
// Analysis is a strictly linear, single-threaded pipeline; every stage
// consumes only the previous stage's output:
//
//	bytes → Artifact → RawFacts → Signals → (TriggeredRules, Classification) → Report
//
//   - artifact: loads bytes and computes the content digest
//   - wasm: walks sections and function bodies, emitting raw facts
//   - signals: projects facts into the schema-stable vocabulary
//   - rules: evaluates the rule catalog and classifies the result
//   - report: assembles the canonical, versioned record
//
// Rules never inspect bytes — only signals. That separation keeps reports
// stable, explainable, and versioned: the schema version gates report
// structure changes, the catalog version gates rule meaning changes.
//
// # Usage
//
//	rep, err := sebi.Inspect("contract.wasm", report.ToolInfo{
//		Name:    sebi.ToolName,
//		Version: "0.1.0",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	out, _ := rep.EncodeJSON()
//	os.Stdout.Write(out)
//	os.Exit(rep.Classification.ExitCode)
//
// Hosts can swap the digest, policy, and logger:
//
//	insp := sebi.New(
//		sebi.WithPolicy(customPolicy),
//		sebi.WithLogger(logger),
//	)
//
// Two executions over identical bytes produce byte-identical serialized
// reports: parsing follows file order, the projector owns all sorting,
// evaluation is order-independent, and the classifier is pure. SEBI never
// executes or simulates WASM and performs no reachability, data-flow, or
// termination analysis — signals are capabilities present in the binary,
// never predictions about behavior.
package sebi

/*
Package ports defines the driven ports (interfaces) for the cado engine.

These interfaces decouple the core logic from external implementations, allowing
the engine to work with various evaluators, storage backends and lock providers.

# Key Interfaces

  - Evaluator: executes a cell's code against named bindings (HCL, processes, fakes).
  - NotebookStore: persists and loads whole notebooks.
  - DistributedLocker: provides distributed locking so one notebook is owned by one caller at a time.
*/
package ports

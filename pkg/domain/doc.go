/*
Package domain contains the core domain models of the cado notebook engine.

It defines the document (Notebook), its units of code (Cell), the staleness
state machine (CellStatus) and the error taxonomy shared by the engine and
its adapters. This package is kept pure and free of external dependencies
like I/O or persistence, following Hexagonal Architecture principles.

# Key Entities

  - Notebook: an ordered collection of cells plus document metadata.
  - Cell: code, a declared output name and the input names it depends on.
  - CellStatus: EXPIRED, RUNNING, OK or ERROR.
  - EvalRequest / EvalResult: the exchange with an external evaluator.
  - NotebookDiff: a partial update between two notebook snapshots.
*/
package domain

// Package datasource provides stores for models of one kind each:
//
//   - memory.go: Memory, an insertion-ordered in-process store.
//   - postgres.go: Postgres, a gorm store over a shared records table.
//   - factory.go: Factory, the per-model-name lookup used for relations and use cases.
//
// Every store serves as a usecase repository and as a relations data source.
package datasource

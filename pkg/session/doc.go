/*
Package session owns notebooks on behalf of a host.

Engines are single-threaded, so every command for a notebook goes through
the Manager, which serializes access per notebook ID (optionally across
replicas via a ports.DistributedLocker), loads the document, applies the
command and saves the result through a ports.NotebookStore.
*/
package session

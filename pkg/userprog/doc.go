// Package userprog implements the syscall interface between user programs
// and the kernel.
//
// A user program places a syscall code in register 2 and up to four
// arguments in registers 4 to 7, then raises a SyscallException. The
// Dispatcher decodes the call, runs it against the kernel tables, writes
// the result to register 2 and advances the program counter.
//
// # Results
//
// Failures are reported in-band: most calls return -1, Read returns -2 at
// end of file and the console number readers return 0. Classify maps the
// underlying error to a Kind for logging.
//
// Exit, Halt and fatal exceptions end the calling thread. A call blocked
// in Join, Exit or Down when the kernel halts ends its thread as well.
package userprog

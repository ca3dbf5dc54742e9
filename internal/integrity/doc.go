// Package integrity compares the canonical audio set each room expects
// against the files actually present in storage.
//
// A RoomIntegrity record is always rebuilt from a full snapshot; nothing
// patches it in place. Files are attributed to a room by their normalized
// prefix, so files of other rooms never show up as orphans.
package integrity

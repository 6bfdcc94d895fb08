package types

const (
	NotMountedErr    ConstError = "no volume mounted"
	InvalidVolumeErr ConstError = "invalid volume"
	InvalidNameErr   ConstError = "invalid file name"
	AlreadyExistsErr ConstError = "file already exists"
	DirectoryFullErr ConstError = "root directory full"
	NotFoundErr      ConstError = "no such file"
	FileOpenErr      ConstError = "file is open"
	InvalidHandleErr ConstError = "invalid file handle"
	OutOfRangeErr    ConstError = "offset out of range"
	TooManyOpenErr   ConstError = "too many open files"
	IOFailureErr     ConstError = "block i/o failure"
)

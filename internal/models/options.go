package models

// CompressionOptions carries per-category codec settings for one request.
// Zero values are filled from the service defaults before dispatch.
type CompressionOptions struct {
	Image    ImageOptions    `json:"image"`
	Video    VideoOptions    `json:"video"`
	Audio    AudioOptions    `json:"audio"`
	Document DocumentOptions `json:"document"`
}

type ImageOptions struct {
	Quality  int `json:"quality" validate:"omitempty,min=1,max=100"`
	MaxWidth int `json:"max_width" validate:"omitempty,min=16,max=16384"`
}

type VideoOptions struct {
	CRF       int    `json:"crf" validate:"omitempty,min=0,max=51"`
	Preset    string `json:"preset" validate:"omitempty,oneof=ultrafast superfast veryfast faster fast medium slow slower veryslow"`
	MaxHeight int    `json:"max_height" validate:"omitempty,min=144,max=4320"`
}

type AudioOptions struct {
	Bitrate string `json:"bitrate" validate:"omitempty,oneof=32k 64k 96k 128k 192k 256k 320k"`
}

type DocumentOptions struct {
	Level string `json:"level" validate:"omitempty,oneof=screen ebook printer prepress"`
}

// BatchRequest is the payload accompanying a multipart batch upload.
type BatchRequest struct {
	Options       CompressionOptions `json:"options"`
	CreateArchive bool               `json:"create_archive"`
}

package pipeline

import (
	"github.com/MeKo-Tech/qrscan/internal/raster"
)

// ScanRawLuma looks for a code in an already decoded single-channel buffer.
// It tries the full frame, then the contrast-enhanced top-right region.
func (p *Pipeline) ScanRawLuma(pix []byte, width, height int) (string, bool) {
	res := p.ScanRawLumaResult(pix, width, height)
	return res.Text, res.Found
}

// ScanRawLumaResult is ScanRawLuma with stage diagnostics.
func (p *Pipeline) ScanRawLumaResult(pix []byte, width, height int) Result {
	var res Result
	frame := raster.NewLuma(pix, width, height)

	if p.detect(&res, StageRaw, p.checkFrame(frame)) {
		return p.finish(PathRawLuma, res)
	}

	region := p.region(width, height)
	crop := raster.Crop(frame, region)
	if !crop.Empty() {
		crop = raster.Enhance(crop, p.cfg.ContrastPercent)
	}
	p.detect(&res, StageCroppedContrast, crop)
	return p.finish(PathRawLuma, res)
}

// ScanImageBytes decodes a compressed image and looks for a code in it.
// It tries the full frame, the top-right region, then the contrast-enhanced
// full frame. Unreadable input is reported as not found.
func (p *Pipeline) ScanImageBytes(data []byte) (string, bool) {
	res := p.ScanImageBytesResult(data)
	return res.Text, res.Found
}

// ScanImageBytesResult is ScanImageBytes with stage diagnostics. Unlike
// ScanImageBytes it keeps the load error in Result.Err.
func (p *Pipeline) ScanImageBytesResult(data []byte) Result {
	var res Result

	frame, err := p.loader.Load(data)
	if err != nil {
		p.logger.Debug("image not loadable", "bytes", len(data), "error", err)
		res.Err = err
		return p.finish(PathImageBytes, res)
	}

	if p.detect(&res, StageRaw, p.checkFrame(frame)) {
		return p.finish(PathImageBytes, res)
	}

	crop := raster.Crop(frame, p.region(frame.Width, frame.Height))
	if p.detect(&res, StageCropped, crop) {
		return p.finish(PathImageBytes, res)
	}

	var enhanced raster.Luma
	if frame.Valid() && !frame.Empty() {
		enhanced = raster.Enhance(frame, p.cfg.ContrastPercent)
	}
	p.detect(&res, StageFullContrast, enhanced)
	return p.finish(PathImageBytes, res)
}

// detect runs the detector for one stage. Empty rasters skip the stage.
func (p *Pipeline) detect(res *Result, stage Stage, img raster.Luma) bool {
	if img.Empty() {
		p.logger.Debug("scan stage skipped", "stage", stage, "width", img.Width, "height", img.Height)
		return false
	}

	res.Attempts++
	text, found := p.detector.Detect(img)
	p.logger.Debug("scan stage", "stage", stage, "width", img.Width, "height", img.Height, "found", found)
	if found {
		res.Text = text
		res.Found = true
		res.Stage = stage
	}
	return found
}

// checkFrame returns the frame if it may be handed to the detector, or an
// empty raster when its geometry does not match its data.
func (p *Pipeline) checkFrame(frame raster.Luma) raster.Luma {
	if !frame.Valid() {
		p.logger.Warn("malformed luma buffer",
			"width", frame.Width, "height", frame.Height, "bytes", len(frame.Pix))
		return raster.Luma{}
	}
	return frame
}

func (p *Pipeline) region(width, height int) raster.Region {
	return raster.TopRightRegion(width, height, p.cfg.CropXFraction, p.cfg.CropHFraction)
}

func (p *Pipeline) finish(path Path, res Result) Result {
	if !res.Found {
		res.Stage = StageNone
	}
	if p.observer != nil {
		p.observer(path, res)
	}
	return res
}

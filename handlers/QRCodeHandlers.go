package handlers

import (
	"backend/repository"
	"backend/services"
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/inconsolata"
	"golang.org/x/image/math/fixed"
)

// addLabel draws a value string onto the combined image.
func addLabel(img *image.RGBA, x, y int, label string) {
	col := color.RGBA{0, 0, 0, 255}
	face := inconsolata.Regular8x16

	point := fixed.Point26_6{
		X: fixed.Int26_6(x * 64),
		Y: fixed.Int26_6(y * 64),
	}

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  point,
	}
	d.DrawString(label)
}

// addLabelBold draws a field label in bold.
func addLabelBold(img *image.RGBA, x, y int, label string) {
	col := color.RGBA{30, 30, 30, 255}
	face := inconsolata.Bold8x16

	point := fixed.Point26_6{
		X: fixed.Int26_6(x * 64),
		Y: fixed.Int26_6(y * 64),
	}

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  point,
	}
	d.DrawString(label)
}

// GenerateProyectoQR godoc
// @Summary      Generate a project budget QR card as JPEG
// @Description  Encodes the project id, name and current grand total into a QR code, rendered above a printable label block with the budget rollup.
// @Tags         qr
// @Param        id   path      int  true  "Project ID"
// @Success      200  {file}    file  "JPEG image"
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/proyectos/{id}/qr [get]
func GenerateProyectoQR(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		proyectoID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project id"})
			return
		}

		proyecto, err := fetchProyecto(db, proyectoID)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Proyecto no encontrado"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching project", "details": err.Error()})
			return
		}

		partidas, err := repository.FetchPartidas(db, proyectoID, repository.PartidaFiltro{})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching partidas", "details": err.Error()})
			return
		}

		resumen := services.ResumenProyecto(partidas)

		qrData := struct {
			ID          int     `json:"id"`
			Nombre      string  `json:"nombre"`
			NumPartidas int     `json:"num_partidas"`
			TotalMXN    float64 `json:"total_mxn"`
		}{
			ID:          proyecto.ID,
			Nombre:      proyecto.Nombre,
			NumPartidas: resumen.TotalPartidas,
			TotalMXN:    resumen.TotalProyecto,
		}

		jsonData, err := json.Marshal(qrData)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to marshal project data"})
			return
		}

		qr, err := qrcode.New(string(jsonData), qrcode.Medium)
		if err != nil {
			c.String(http.StatusInternalServerError, "QR code generation failed")
			return
		}

		qrImg := qr.Image(512)

		qrSize := qrImg.Bounds().Dy()
		padding := 30
		lineHeight := 28
		textAreaHeight := 4*lineHeight + padding
		totalHeight := qrSize + padding + textAreaHeight

		combinedImg := image.NewRGBA(image.Rect(0, 0, qrSize, totalHeight))
		draw.Draw(combinedImg, combinedImg.Bounds(), &image.Uniform{color.White}, image.Point{}, draw.Src)

		qrRect := image.Rect(0, 0, qrSize, qrSize)
		draw.Draw(combinedImg, qrRect, qrImg, image.Point{}, draw.Src)

		// separator line between QR code and label block
		separatorY := qrSize + padding/2
		for x := 0; x < qrSize; x++ {
			combinedImg.Set(x, separatorY, color.RGBA{200, 200, 200, 255})
		}

		startY := qrSize + padding + lineHeight
		xPos := 20

		addLabelBold(combinedImg, xPos, startY, "Proyecto:")
		nombreDisplay := proyecto.Nombre
		if len(nombreDisplay) > 30 {
			nombreDisplay = nombreDisplay[:27] + "..."
		}
		addLabel(combinedImg, xPos+130, startY, nombreDisplay)

		addLabelBold(combinedImg, xPos, startY+lineHeight, "Partidas:")
		addLabel(combinedImg, xPos+130, startY+lineHeight, strconv.Itoa(resumen.TotalPartidas))

		addLabelBold(combinedImg, xPos, startY+2*lineHeight, "Categorias:")
		addLabel(combinedImg, xPos+130, startY+2*lineHeight, strconv.Itoa(resumen.NumCategorias))

		addLabelBold(combinedImg, xPos, startY+3*lineHeight, "Total MXN:")
		addLabel(combinedImg, xPos+130, startY+3*lineHeight, fmt.Sprintf("$%.2f", resumen.TotalProyecto))

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, combinedImg, nil); err != nil {
			c.String(http.StatusInternalServerError, "JPEG encoding failed")
			return
		}

		c.Data(http.StatusOK, "image/jpeg", buf.Bytes())
	}
}

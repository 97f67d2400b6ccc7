/*
Copyright © 2017 the Fatiando authors.
This file is part of Fatiando.

Fatiando is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Fatiando is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Fatiando.  If not, see <http://www.gnu.org/licenses/>.
*/

// Command fatiando is a command-line interface for the Fatiando
// geophysics toolkit.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/leouieda/fatiando/fatiandoutil"
	"github.com/sirupsen/logrus"
)

func init() {
	logrus.SetFormatter(&logrus.TextFormatter{
		ForceColors:     true,
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339Nano,
		DisableSorting:  true,
	})
}

func main() {
	if err := fatiandoutil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
